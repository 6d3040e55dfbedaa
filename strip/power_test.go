package strip

import (
	"math"
	"testing"
)

func meanBrightness(px []pixel) float64 {
	var sum float64
	for _, p := range px {
		sum += (p.r + p.g + p.b) / 3
	}
	return sum / float64(len(px))
}

func TestPowerLimitNoopBelowLimit(t *testing.T) {
	s := mustNew(t, WithLedCount(4), WithPowerLimit(0.5))
	s.SetPixelRGB(0, 0.3, 0.3, 0.3)
	s.SetPixelRGB(1, 0.2, 0.1, 0.0)
	px := s.limited()
	for i := range px {
		r, g, b := s.Pixel(i)
		if px[i].r != r || px[i].g != g || px[i].b != b {
			t.Errorf("pixel %d changed below limit, got: %v, want: %v %v %v", i, px[i], r, g, b)
		}
	}
}

func TestPowerLimitRescalesToLimit(t *testing.T) {
	s := mustNew(t, WithLedCount(2), WithPowerLimit(0.25))
	s.SetPixelRGB(0, 1.0, 0.5, 0.0)
	s.SetPixelRGB(1, 1.0, 1.0, 1.0)
	px := s.limited()

	got := meanBrightness(px)
	if math.Abs(got-0.25) > 1e-12 {
		t.Errorf("wrong mean brightness after rescale, got: %v, want: 0.25", got)
	}
	// Uniform rescale preserves per-pixel channel ratios (hue).
	if math.Abs(px[0].g/px[0].r-0.5) > 1e-12 {
		t.Errorf("channel ratio not preserved, got g/r: %v, want: 0.5", px[0].g/px[0].r)
	}
	if px[0].b != 0 {
		t.Errorf("zero channel should stay zero, got: %v", px[0].b)
	}
	// The store itself is untouched.
	if r, _, _ := s.Pixel(0); r != 1.0 {
		t.Errorf("stored pixel mutated by limiter, got r: %v, want: 1.0", r)
	}
}

func TestPowerLimitClampsBeforeSumming(t *testing.T) {
	s := mustNew(t, WithLedCount(2), WithPowerLimit(1.0))
	s.AddPixelRGB(0, 3.0, 0, 0)
	s.AddPixelRGB(1, -2.0, 0, 0)
	px := s.limited()
	if px[0].r != 1.0 {
		t.Errorf("over-range channel, got: %v, want: 1.0", px[0].r)
	}
	if px[1].r != 0.0 {
		t.Errorf("negative channel, got: %v, want: 0.0", px[1].r)
	}
}

func TestPowerLimitZeroBlanksFrame(t *testing.T) {
	s := mustNew(t, WithLedCount(2), WithPowerLimit(0.0))
	s.SetPixelRGB(0, 1, 1, 1)
	px := s.limited()
	if px[0].r != 0 || px[0].g != 0 || px[0].b != 0 {
		t.Errorf("limit 0 should blank the frame, got: %v", px[0])
	}
}
