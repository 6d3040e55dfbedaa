package strip

import "github.com/ledcast/ledcast/metrics"

// clampByte converts a channel value scaled to 0..255 into a byte,
// truncating toward zero. Truncation is deliberate: 254.9 encodes as 254.
func clampByte(v float64) byte {
	n := int(v)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return byte(n)
}

// writeCountHeader writes the strip's LED count big-endian into the
// protocol's count-header bytes, if the protocol defines them. The rest of
// the header stays zero.
func writeCountHeader(buf []byte, p Protocol, count int) {
	if p.CountHi < 0 {
		return
	}
	hi := count / 256
	if hi > 255 {
		hi = 255
	}
	buf[p.CountHi] = byte(hi)
	buf[p.CountLo] = byte(count % 256)
}

// updateBuffers rewrites every strip's transmit buffer from a
// power-limited copy of the pixel store. The rebuild is all-or-nothing:
// gated on the dirty flag, it rewrites either every buffer or none.
func (s *LedStrip) updateBuffers() {
	if !s.dirty {
		return
	}
	px := s.limited()
	for pos := range px {
		i := s.stripIdx[pos]
		proto := s.protos[i]
		off := s.physOff[pos]*3 + proto.HeaderLen
		buf := s.bufs[i]
		buf[off+proto.R] = clampByte(px[pos].r * 255)
		buf[off+proto.G] = clampByte(px[pos].g * 255)
		buf[off+proto.B] = clampByte(px[pos].b * 255)
	}
	s.dirty = false
	metrics.FramesEncoded.Inc()
}
