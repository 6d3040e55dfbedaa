// Package effects implements time-driven animations on top of a
// strip.LedStrip. An Effect mutates the frame and tells the caller how
// long to wait before the next step; the caller owns the pacing and the
// Transmit calls.
package effects

import (
	"math"
	"time"

	"github.com/ledcast/ledcast/strip"
)

type Effect interface {
	Start(s *strip.LedStrip, now time.Time)
	NextStep(s *strip.LedStrip, now time.Time) time.Duration
	Name() string
}

// frameTime is the step interval for continuously animating effects,
// roughly 50 frames per second.
const frameTime = 20 * time.Millisecond

type rgb struct {
	r, g, b float64
}

type Fade struct {
	fadeTime time.Duration
	destR    float64
	destG    float64
	destB    float64
	startPix []rgb
	start    time.Time
}

// NewFade fades the whole strip to one destination color over fadeTime.
func NewFade(fadeTime time.Duration, r, g, b float64) *Fade {
	f := Fade{}
	f.fadeTime = fadeTime
	f.destR = r
	f.destG = g
	f.destB = b
	return &f
}

func (f *Fade) Start(s *strip.LedStrip, now time.Time) {
	f.startPix = make([]rgb, s.LedCount())
	for i := range f.startPix {
		r, g, b := s.Pixel(i)
		f.startPix[i] = rgb{r, g, b}
	}
	f.start = now
}

func (f *Fade) NextStep(s *strip.LedStrip, now time.Time) time.Duration {
	pct := float64(now.Sub(f.start).Nanoseconds()) / float64(f.fadeTime.Nanoseconds())
	if pct >= 1.0 {
		// We're done
		for i := 0; i < s.LedCount(); i++ {
			s.SetPixelRGB(i, f.destR, f.destG, f.destB)
		}
		return 0
	}
	for i, p := range f.startPix {
		s.SetPixelRGB(i,
			p.r+(f.destR-p.r)*pct,
			p.g+(f.destG-p.g)*pct,
			p.b+(f.destB-p.b)*pct)
	}
	return frameTime
}

func (f *Fade) Name() string {
	return "FADE"
}

type Fill struct {
	r, g, b float64
}

// NewFill sets the whole strip to one color in a single step.
func NewFill(r, g, b float64) *Fill {
	return &Fill{r, g, b}
}

func (f *Fill) Start(s *strip.LedStrip, now time.Time) {
}

func (f *Fill) NextStep(s *strip.LedStrip, now time.Time) time.Duration {
	for i := 0; i < s.LedCount(); i++ {
		s.SetPixelRGB(i, f.r, f.g, f.b)
	}
	return 0
}

func (f *Fill) Name() string {
	return "CONST"
}

type Rainbow struct {
	cycleTime time.Duration
	start     time.Time
}

// NewRainbow spreads a full hue wheel across the strip and scrolls it
// once per cycleTime.
func NewRainbow(cycleTime time.Duration) *Rainbow {
	r := Rainbow{}
	r.cycleTime = cycleTime
	return &r
}

func (r *Rainbow) Start(s *strip.LedStrip, now time.Time) {
	r.start = now
}

func (r *Rainbow) NextStep(s *strip.LedStrip, now time.Time) time.Duration {
	pos := float64(now.Sub(r.start).Nanoseconds()) / float64(r.cycleTime.Nanoseconds())
	pos -= math.Floor(pos)
	n := s.LedCount()
	for i := 0; i < n; i++ {
		h := float64(i)/float64(n) + pos
		h -= math.Floor(h)
		s.SetHSV(float64(i), h, 1.0, 1.0)
	}
	return frameTime
}

func (r *Rainbow) Name() string {
	return "RAINBOW"
}

type KnightRider struct {
	pulseTime time.Duration
	pulseLen  int
	start     time.Time
}

// NewKnightRider sweeps a red pulse of pulseLen pixels back and forth,
// one full sweep per pulseTime. The pulse head moves on fractional
// positions, so its edges land between pixels.
func NewKnightRider(pulseTime time.Duration, pulseLen int) *KnightRider {
	kr := KnightRider{}
	kr.pulseTime = pulseTime
	kr.pulseLen = pulseLen
	return &kr
}

func (kr *KnightRider) Start(s *strip.LedStrip, now time.Time) {
	kr.start = now
	s.Clear()
}

func (kr *KnightRider) NextStep(s *strip.LedStrip, now time.Time) time.Duration {
	pulse := now.Sub(kr.start).Nanoseconds() / kr.pulseTime.Nanoseconds()
	progress := float64(now.Sub(kr.start).Nanoseconds()%kr.pulseTime.Nanoseconds()) /
		float64(kr.pulseTime.Nanoseconds())
	head := float64(s.LedCount()+kr.pulseLen) * progress
	dir := 1.0
	if pulse%2 == 1 {
		dir = -1.0
		head = float64(s.LedCount()) - head
	}
	s.Clear()
	for i := 0; i < kr.pulseLen; i++ {
		v := float64(kr.pulseLen-i) / float64(kr.pulseLen)
		s.AddRGB(head-dir*float64(i), v, 0, 0)
	}
	return frameTime
}

func (kr *KnightRider) Name() string {
	return "KNIGHTRIDER"
}
