package strip

import "math"

// SetPixelRGB sets the color at an integer logical position. Out-of-range
// positions are dropped silently unless loop is enabled, in which case the
// position wraps. Values are stored unclamped; clamping happens at encode.
func (s *LedStrip) SetPixelRGB(pos int, r, g, b float64) {
	pos, ok := s.resolve(pos)
	if !ok {
		return
	}
	s.pixels[pos] = pixel{r, g, b}
	s.dirty = true
}

// AddPixelRGB adds to the color at an integer logical position, with the
// same bounds handling as SetPixelRGB. Repeated adds may push channels
// beyond 1.0; the excess is only clamped away at encode time.
func (s *LedStrip) AddPixelRGB(pos int, r, g, b float64) {
	pos, ok := s.resolve(pos)
	if !ok {
		return
	}
	p := &s.pixels[pos]
	p.r += r
	p.g += g
	p.b += b
	s.dirty = true
}

// SetRGB sets a color at a fractional position, splitting it between the
// two neighboring pixels with linear weights. The weights always sum to 1,
// so the injected energy is conserved; spill past either end of the strip
// follows the integer ops' bounds rule.
func (s *LedStrip) SetRGB(pos, r, g, b float64) {
	floor := math.Floor(pos)
	ceil := floor + 1
	wf := 1.0 - (pos - floor)
	wc := 1.0 - (ceil - pos)
	s.SetPixelRGB(int(floor), r*wf, g*wf, b*wf)
	s.SetPixelRGB(int(ceil), r*wc, g*wc, b*wc)
}

// AddRGB adds a color at a fractional position; see SetRGB.
func (s *LedStrip) AddRGB(pos, r, g, b float64) {
	floor := math.Floor(pos)
	ceil := floor + 1
	wf := 1.0 - (pos - floor)
	wc := 1.0 - (ceil - pos)
	s.AddPixelRGB(int(floor), r*wf, g*wf, b*wf)
	s.AddPixelRGB(int(ceil), r*wc, g*wc, b*wc)
}

// SetHSV sets a color given as hue/saturation/value, each in [0,1], at a
// fractional position.
func (s *LedStrip) SetHSV(pos, h, sat, v float64) {
	r, g, b := hsvToRGB(h, sat, v)
	s.SetRGB(pos, r, g, b)
}

// AddHSV adds a color given as hue/saturation/value, each in [0,1], at a
// fractional position.
func (s *LedStrip) AddHSV(pos, h, sat, v float64) {
	r, g, b := hsvToRGB(h, sat, v)
	s.AddRGB(pos, r, g, b)
}

// Clear sets every pixel to black. Takes effect on the next Transmit.
func (s *LedStrip) Clear() {
	for i := range s.pixels {
		s.pixels[i] = pixel{}
	}
	s.dirty = true
}

// resolve applies loop wrapping and bounds checking to a logical position.
func (s *LedStrip) resolve(pos int) (int, bool) {
	n := len(s.pixels)
	if n == 0 {
		return 0, false
	}
	if s.loop {
		// Double mod keeps negative positions wrapping forward.
		pos = ((pos % n) + n) % n
	}
	if pos < 0 || pos >= n {
		return 0, false
	}
	return pos, true
}
