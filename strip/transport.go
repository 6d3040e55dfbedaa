package strip

import (
	"net"
	"strconv"
	"time"

	"github.com/ledcast/ledcast/metrics"
)

// connectTimeout bounds the dial on stream-kind strips. There is no
// blocking retry loop: a failed connect costs one frame and the next
// Transmit tries again.
const connectTimeout = 2 * time.Second

// send pushes strip i's buffer to its peer. Connections are created
// lazily on first use. Stream connections that fail mid-send are dropped
// so the next cycle reconnects; datagram sends are fire-and-forget.
func (s *LedStrip) send(i int) {
	label := strconv.Itoa(i)
	conn := s.conns[i]
	if conn == nil {
		var err error
		conn, err = s.dial(i)
		if err != nil {
			metrics.ConnectErrors.WithLabelValues(label).Inc()
			s.log.Warn("couldn't connect to strip",
				"strip", i, "addr", s.addrs[i], "port", s.ports[i], "error", err)
			return
		}
		s.conns[i] = conn
	}
	n, err := conn.Write(s.bufs[i])
	if err != nil || n < len(s.bufs[i]) {
		metrics.SendErrors.WithLabelValues(label).Inc()
		s.log.Debug("dropped frame", "strip", i, "error", err)
		if s.protos[i].Kind == Stream {
			conn.Close()
			s.conns[i] = nil
		}
		return
	}
	metrics.PacketsSent.WithLabelValues(label).Inc()
	metrics.BytesSent.WithLabelValues(label).Add(float64(n))
}

func (s *LedStrip) dial(i int) (net.Conn, error) {
	addr := net.JoinHostPort(s.addrs[i], strconv.Itoa(s.ports[i]))
	if s.protos[i].Kind == Stream {
		return net.DialTimeout("tcp", addr, connectTimeout)
	}
	return net.Dial("udp", addr)
}
