package main

import (
	"github.com/spf13/cobra"

	"github.com/ledcast/ledcast/strip"
)

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Blank all configured strips and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		s, err := strip.New(append(cfg.Options(), strip.WithLogger(log))...)
		if err != nil {
			return err
		}
		defer s.Close()
		s.Off()
		return nil
	},
}
