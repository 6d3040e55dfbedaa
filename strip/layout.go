package strip

import (
	"fmt"
	"net"
)

// resize reconciles a per-strip list to the authoritative strip count:
// extra entries are truncated, missing ones repeat the last supplied value.
func resize[T any](v []T, n int) []T {
	out := make([]T, n)
	for i := 0; i < n; i++ {
		if i < len(v) {
			out[i] = v[i]
		} else {
			out[i] = v[len(v)-1]
		}
	}
	return out
}

// rebuild validates the configuration, reconciles the per-strip lists and
// derives the logical-to-physical layout. The strip count is the max of the
// address and port list lengths; every other list is resized to match. This
// is the only place the pixel store is reallocated, so any layout change
// resets all colors to black.
func (s *LedStrip) rebuild() error {
	if len(s.addrs) == 0 || len(s.ports) == 0 ||
		len(s.ledCounts) == 0 || len(s.protoNames) == 0 || len(s.flips) == 0 {
		return fmt.Errorf("per-strip option lists must not be empty")
	}
	if s.powerLimit < 0 || s.powerLimit > 1 {
		return fmt.Errorf("power limit %v outside [0,1]", s.powerLimit)
	}
	n := len(s.addrs)
	if len(s.ports) > n {
		n = len(s.ports)
	}

	ledCounts := resize(s.ledCounts, n)
	addrs := resize(s.addrs, n)
	ports := resize(s.ports, n)
	protoNames := resize(s.protoNames, n)
	flips := resize(s.flips, n)

	protos := make([]Protocol, n)
	total := 0
	for i, c := range ledCounts {
		if c <= 0 {
			return fmt.Errorf("strip %d: led count %d must be positive", i, c)
		}
		p, ok := Protocols[protoNames[i]]
		if !ok {
			return fmt.Errorf("strip %d: unknown protocol %q", i, protoNames[i])
		}
		protos[i] = p
		total += c
	}

	s.ledCounts = ledCounts
	s.addrs = addrs
	s.ports = ports
	s.protoNames = protoNames
	s.protos = protos
	s.flips = flips

	s.pixels = make([]pixel, total)
	s.stripIdx = make([]int, total)
	s.physOff = make([]int, total)
	pos := 0
	for i, c := range ledCounts {
		for j := 0; j < c; j++ {
			s.stripIdx[pos] = i
			if flips[i] {
				s.physOff[pos] = c - 1 - j
			} else {
				s.physOff[pos] = j
			}
			pos++
		}
	}

	s.closeConns()
	s.conns = make([]net.Conn, n)
	s.bufs = make([][]byte, n)
	for i := range s.bufs {
		s.bufs[i] = make([]byte, ledCounts[i]*3+protos[i].HeaderLen)
		writeCountHeader(s.bufs[i], protos[i], ledCounts[i])
	}
	s.dirty = true
	return nil
}
