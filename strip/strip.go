// Package strip maintains an in-memory color frame for one or more
// networked addressable LED strips and serializes it into the strips'
// wire formats on demand. Frames are best-effort: transmission never
// blocks on a dead strip and never reports ordinary transport failures.
//
// An instance is owned by a single goroutine. Concurrent mutation from
// multiple goroutines is not supported.
package strip

import (
	"fmt"
	"log/slog"
	"net"
)

// Defaults match the classic esp8266ws2812i2s setup: one 300-LED strip
// reachable on the firmware's own access point.
const (
	DefaultLedCount   = 300
	DefaultAddress    = "192.168.4.1"
	DefaultPort       = 7777
	DefaultProtocol   = "esp"
	DefaultPowerLimit = 0.2
)

type pixel struct {
	r, g, b float64
}

// LedStrip is one logical pixel buffer fanned out over one or more
// physical strips. Callers address pixels by logical position across all
// strips combined; the per-strip layout only affects the wire encoding.
type LedStrip struct {
	ledCounts  []int
	addrs      []string
	ports      []int
	protoNames []string
	protos     []Protocol
	flips      []bool

	powerLimit float64
	loop       bool

	pixels   []pixel
	stripIdx []int // logical position -> owning strip
	physOff  []int // logical position -> offset within that strip's run
	bufs     [][]byte
	conns    []net.Conn
	dirty    bool

	log *slog.Logger
}

// Option configures a LedStrip at construction time. List-valued options
// take one value per strip; the lists are reconciled as described at
// rebuild.
type Option func(*LedStrip)

// WithLedCount sets the number of LEDs per strip.
func WithLedCount(counts ...int) Option {
	return func(s *LedStrip) { s.ledCounts = counts }
}

// WithAddress sets the host or IP per strip.
func WithAddress(addrs ...string) Option {
	return func(s *LedStrip) { s.addrs = addrs }
}

// WithPort sets the port per strip.
func WithPort(ports ...int) Option {
	return func(s *LedStrip) { s.ports = ports }
}

// WithProtocol sets the protocol selector per strip ("esp" or "opc").
func WithProtocol(names ...string) Option {
	return func(s *LedStrip) { s.protoNames = names }
}

// WithFlip reverses the physical write order per strip.
func WithFlip(flips ...bool) Option {
	return func(s *LedStrip) { s.flips = flips }
}

// WithPowerLimit sets the ceiling on the frame's mean brightness, in [0,1].
func WithPowerLimit(limit float64) Option {
	return func(s *LedStrip) { s.powerLimit = limit }
}

// WithLoop makes out-of-range positions wrap around instead of being dropped.
func WithLoop(loop bool) Option {
	return func(s *LedStrip) { s.loop = loop }
}

// WithLogger sets the logger used for transport events.
func WithLogger(log *slog.Logger) Option {
	return func(s *LedStrip) { s.log = log }
}

// New creates a LedStrip. Invalid configuration (unknown protocol,
// non-positive LED count, power limit outside [0,1]) fails construction.
func New(opts ...Option) (*LedStrip, error) {
	s := &LedStrip{
		ledCounts:  []int{DefaultLedCount},
		addrs:      []string{DefaultAddress},
		ports:      []int{DefaultPort},
		protoNames: []string{DefaultProtocol},
		flips:      []bool{false},
		powerLimit: DefaultPowerLimit,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// LedCount returns the total number of logical pixels across all strips.
func (s *LedStrip) LedCount() int {
	return len(s.pixels)
}

// NumStrips returns the number of physical strips.
func (s *LedStrip) NumStrips() int {
	return len(s.bufs)
}

// Pixel returns the stored (unclamped) color triple at a logical position,
// or zeros when the position is out of range.
func (s *LedStrip) Pixel(pos int) (r, g, b float64) {
	if pos < 0 || pos >= len(s.pixels) {
		return 0, 0, 0
	}
	p := s.pixels[pos]
	return p.r, p.g, p.b
}

// SetLedCounts reconfigures the per-strip LED counts. Like every layout
// change, this reallocates the pixel store: prior color state is lost.
func (s *LedStrip) SetLedCounts(counts ...int) error {
	return s.reconfigure(func() { s.ledCounts = counts })
}

// SetAddresses reconfigures the per-strip hosts.
func (s *LedStrip) SetAddresses(addrs ...string) error {
	return s.reconfigure(func() { s.addrs = addrs })
}

// SetPorts reconfigures the per-strip ports.
func (s *LedStrip) SetPorts(ports ...int) error {
	return s.reconfigure(func() { s.ports = ports })
}

// SetProtocols reconfigures the per-strip protocol selectors.
func (s *LedStrip) SetProtocols(names ...string) error {
	return s.reconfigure(func() { s.protoNames = names })
}

// SetFlips reconfigures the per-strip flip flags.
func (s *LedStrip) SetFlips(flips ...bool) error {
	return s.reconfigure(func() { s.flips = flips })
}

// SetPowerLimit changes the mean-brightness ceiling. Out-of-range values
// are a configuration error, not silently clamped.
func (s *LedStrip) SetPowerLimit(limit float64) error {
	if limit < 0 || limit > 1 {
		return fmt.Errorf("power limit %v outside [0,1]", limit)
	}
	s.powerLimit = limit
	s.dirty = true
	return nil
}

// PowerLimit returns the configured mean-brightness ceiling.
func (s *LedStrip) PowerLimit() float64 {
	return s.powerLimit
}

// SetLoop toggles wrap-around addressing.
func (s *LedStrip) SetLoop(loop bool) {
	s.loop = loop
}

// Configure applies a full set of options in one validate-then-commit
// step: either every option takes effect or, on the first invalid value,
// none of them does. Like any layout change it reallocates the pixel
// store, so prior color state is lost.
func (s *LedStrip) Configure(opts ...Option) error {
	return s.reconfigure(func() {
		for _, opt := range opts {
			opt(s)
		}
	})
}

// reconfigure applies a raw config mutation and rebuilds the layout,
// restoring the previous configuration if the new one is invalid.
func (s *LedStrip) reconfigure(apply func()) error {
	prev := struct {
		ledCounts  []int
		addrs      []string
		ports      []int
		protoNames []string
		flips      []bool
		powerLimit float64
		loop       bool
		log        *slog.Logger
	}{s.ledCounts, s.addrs, s.ports, s.protoNames, s.flips, s.powerLimit, s.loop, s.log}

	apply()
	if err := s.rebuild(); err != nil {
		s.ledCounts = prev.ledCounts
		s.addrs = prev.addrs
		s.ports = prev.ports
		s.protoNames = prev.protoNames
		s.flips = prev.flips
		s.powerLimit = prev.powerLimit
		s.loop = prev.loop
		s.log = prev.log
		return err
	}
	return nil
}

// Transmit encodes the frame if anything changed since the last encode and
// sends each strip's buffer to its configured peer. Transport failures cost
// the affected strip this frame only; they are never returned.
func (s *LedStrip) Transmit() {
	s.updateBuffers()
	for i := range s.bufs {
		s.send(i)
	}
}

// Off blanks the strip immediately: clear plus transmit.
func (s *LedStrip) Off() {
	s.Clear()
	s.Transmit()
}

// Close releases all strip connections. The strip remains usable; the next
// Transmit reconnects as needed.
func (s *LedStrip) Close() {
	s.closeConns()
}

func (s *LedStrip) closeConns() {
	for i, c := range s.conns {
		if c != nil {
			c.Close()
			s.conns[i] = nil
		}
	}
}
