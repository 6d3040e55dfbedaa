package strip

// clamp limits v to [lo,hi] inclusive.
func clamp(lo, v, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// limited returns a power-limited copy of the pixel store; stored values
// are never touched. Channels are clamped to [0,1] first, then, if the
// frame's mean brightness (average of each pixel's mean channel) exceeds
// the configured limit, every channel is scaled by limit/mean. The scale
// is uniform, so hue and per-pixel ratios survive; only brightness drops.
func (s *LedStrip) limited() []pixel {
	px := make([]pixel, len(s.pixels))
	copy(px, s.pixels)
	if len(px) == 0 {
		return px
	}
	var sum float64
	for i := range px {
		px[i].r = clamp(0, px[i].r, 1)
		px[i].g = clamp(0, px[i].g, 1)
		px[i].b = clamp(0, px[i].b, 1)
		sum += (px[i].r + px[i].g + px[i].b) / 3
	}
	mean := sum / float64(len(px))
	if mean > s.powerLimit {
		f := s.powerLimit / mean
		for i := range px {
			px[i].r *= f
			px[i].g *= f
			px[i].b *= f
		}
	}
	return px
}
