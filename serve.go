package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ledcast/ledcast/config"
	"github.com/ledcast/ledcast/effects"
	"github.com/ledcast/ledcast/strip"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the effect server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

type Server struct {
	strip *strip.LedStrip
	l     net.Listener
	effc  chan effects.Effect
	cfgc  chan config.Config
	log   *slog.Logger

	mu      sync.Mutex // guards laste, off, running across connection goroutines
	laste   effects.Effect
	off     bool
	running bool
}

func NewServer(cfg config.Config, s *strip.LedStrip, log *slog.Logger) (*Server, error) {
	l, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, err
	}
	log.Info("listening", "addr", cfg.Listen)
	return &Server{
		strip: s,
		l:     l,
		effc:  make(chan effects.Effect),
		cfgc:  make(chan config.Config),
		off:   true,
		log:   log,
	}, nil
}

func serve(cfg config.Config) error {
	log := newLogger(cfg)
	slog.SetDefault(log)

	s, err := strip.New(append(cfg.Options(), strip.WithLogger(log))...)
	if err != nil {
		return err
	}
	defer s.Close()

	srv, err := NewServer(cfg, s, log)
	if err != nil {
		return err
	}

	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics listening", "addr", cfg.MetricsListen)
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	if configPath != "" {
		w := config.NewWatcher(configPath, log, func(c config.Config) {
			// Reconfiguration must happen on the effect goroutine, which
			// is the only writer of the strip.
			srv.cfgc <- c
		})
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	go srv.runEffects()
	srv.handleConnections()
	return nil
}

func parseDuration(parms string) (string, time.Duration, error) {
	t := strings.SplitN(parms, " ", 2)
	d, err := time.ParseDuration(t[0] + "s")
	if err != nil {
		return "", 0, err
	}
	if len(t) == 1 {
		return "", d, nil
	}
	return t[1], d, nil
}

// parseColor reads a hex RRGGBB token into channel values in [0,1].
func parseColor(parms string) (string, float64, float64, float64, error) {
	t := strings.SplitN(parms, " ", 2)
	var r, g, b int
	n, err := fmt.Sscanf(t[0], "%02X%02X%02X", &r, &g, &b)
	if err != nil && err != io.EOF {
		return "", 0, 0, 0, err
	}
	if n != 3 {
		return "", 0, 0, 0, fmt.Errorf("only %d tokens parsed from '%s', wanted 3", n, t[0])
	}
	if len(t) == 1 {
		return "", float64(r) / 255, float64(g) / 255, float64(b) / 255, nil
	}
	return t[1], float64(r) / 255, float64(g) / 255, float64(b) / 255, nil
}

func (s *Server) createEffect(cmd, parms string, w *bufio.Writer) (effects.Effect, error) {
	switch cmd {
	case "FADE":
		parms, r, g, b, err := parseColor(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing color: %v", err)
		}
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewFade(d, r, g, b), nil
	case "SET":
		_, r, g, b, err := parseColor(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing color: %v", err)
		}
		return effects.NewFill(r, g, b), nil
	case "RAINBOW":
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewRainbow(d), nil
	case "KNIGHTRIDER":
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewKnightRider(d, s.strip.LedCount()/4), nil
	case "GET":
		for p := 0; p < s.strip.LedCount(); p++ {
			r, g, b := s.strip.Pixel(p)
			if r != 0 || g != 0 || b != 0 {
				w.WriteString("1\n")
				return nil, w.Flush()
			}
		}
		w.WriteString("0\n")
		return nil, w.Flush()
	case "COLOUR", "COLOR":
		r, g, b := s.strip.Pixel(0)
		c := fmt.Sprintf("%02X%02X%02X\n", int(r*255), int(g*255), int(b*255))
		w.WriteString(c)
		return nil, w.Flush()
	case "MODE":
		s.mu.Lock()
		n := "CONST"
		if s.off {
			n = "OFF"
		} else if s.running {
			if s.laste == nil {
				s.mu.Unlock()
				return nil, fmt.Errorf("running, but no last effect")
			}
			n = s.laste.Name()
		}
		s.mu.Unlock()
		if parms == "" {
			w.WriteString(n + "\n")
			return nil, w.Flush()
		}
		r := "0\n"
		if parms == n {
			r = "1\n"
		}
		w.WriteString(r)
		return nil, w.Flush()
	case "ON":
		s.mu.Lock()
		e := s.laste
		s.mu.Unlock()
		return e, nil
	case "OFF":
		// Inserted directly into the channel so laste keeps the last
		// real effect for ON.
		fb := effects.NewFade(2*time.Second, 0, 0, 0)
		s.mu.Lock()
		s.off = true
		s.mu.Unlock()
		s.effc <- fb
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command: %s", cmd)
}

// runEffects owns the strip: every pixel write, Transmit and
// reconfiguration happens on this goroutine.
func (s *Server) runEffects() {
	var laste, e effects.Effect
	var d time.Duration
	var steps int
	var start time.Time
	for {
		if d == 0 {
			select {
			case e = <-s.effc:
			case cfg := <-s.cfgc:
				s.applyConfig(cfg)
				continue
			}
		} else {
			select {
			case e = <-s.effc:
			case cfg := <-s.cfgc:
				s.applyConfig(cfg)
				if laste != nil {
					// Rebuilds clear the frame, restart the effect.
					laste.Start(s.strip, time.Now())
				}
				continue
			case <-time.After(d):
			}
		}
		if e == nil {
			s.log.Error("ready to process effect, but no effect")
			d = 0
			continue
		}
		if e != laste {
			start = time.Now()
			e.Start(s.strip, start)
			s.mu.Lock()
			s.running = true
			s.mu.Unlock()
			steps = 0
		}
		d = e.NextStep(s.strip, time.Now())
		steps++
		s.strip.Transmit()
		if d == 0 {
			el := time.Since(start)
			ps := time.Duration(el.Nanoseconds() / int64(steps))
			s.log.Info("finished effect", "name", e.Name(), "steps", steps, "total", el, "per_step", ps)
			laste = nil
			e = nil
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		} else {
			laste = e
		}
	}
}

func (s *Server) applyConfig(cfg config.Config) {
	if err := cfg.Apply(s.strip); err != nil {
		s.log.Warn("couldn't apply new config", "error", err)
		return
	}
	s.log.Info("applied new config",
		"strips", s.strip.NumStrips(), "leds", s.strip.LedCount(),
		"power_limit", s.strip.PowerLimit())
}

func (s *Server) handleConnection(c net.Conn) {
	s.log.Debug("handling connection", "remote", c.RemoteAddr())
	defer c.Close()
	r := bufio.NewReader(c)
	w := bufio.NewWriter(c)
	for {
		l, err := r.ReadString('\n')
		if err == io.EOF {
			s.log.Debug("connection closed", "remote", c.RemoteAddr())
			return
		}
		if err != nil {
			s.log.Warn("error reading command", "remote", c.RemoteAddr(), "error", err)
			return
		}
		l = strings.TrimSpace(l)
		s.log.Debug("got line", "line", l)
		t := strings.SplitN(l, " ", 2)
		cmd := strings.ToUpper(t[0])
		parms := ""
		if len(t) > 1 {
			parms = t[1]
		}
		if cmd == "QUIT" {
			return
		}
		e, err := s.createEffect(cmd, parms, w)
		if err != nil {
			s.log.Warn("error creating effect", "error", err)
			w.WriteString("ERR: " + err.Error() + "\n")
			if err = w.Flush(); err != nil {
				s.log.Warn("error writing error reply", "error", err)
			}
			return
		}
		if e != nil {
			// Status commands return no effect and write their own reply.
			w.WriteString("OK\n")
			if err = w.Flush(); err != nil {
				s.log.Warn("error writing reply", "error", err)
			}
			s.effc <- e
			s.mu.Lock()
			s.laste = e
			s.off = false
			s.mu.Unlock()
		}
	}
}

func (s *Server) handleConnections() {
	for {
		conn, err := s.l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("error accepting connection", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}
