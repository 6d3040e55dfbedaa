package strip

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestTransmitDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed ListenPacket: %v", err)
	}
	defer pc.Close()
	port := pc.LocalAddr().(*net.UDPAddr).Port

	s := mustNew(t, WithLedCount(1), WithAddress("127.0.0.1"), WithPort(port), WithPowerLimit(1.0))
	defer s.Close()
	s.SetPixelRGB(0, 1.0, 0.0, 1.0)
	s.Transmit()

	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("Failed ReadFrom: %v", err)
	}
	want := []byte{0, 0, 0, 0, 255, 255}
	if n != len(want) {
		t.Fatalf("wrong datagram len, got: %d, want: %d", n, len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("wrong datagram, got: %v, want: %v", buf[:n], want)
			break
		}
	}
}

func TestTransmitStream(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed Listen: %v", err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	got := make(chan []byte, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 2*3+4)
		if _, err := io.ReadFull(c, buf); err != nil {
			return
		}
		got <- buf
	}()

	s := mustNew(t,
		WithLedCount(2),
		WithAddress("127.0.0.1"),
		WithPort(port),
		WithProtocol("opc"),
		WithPowerLimit(1.0))
	defer s.Close()
	s.SetPixelRGB(0, 1.0, 0.0, 0.0)
	s.Transmit()

	select {
	case buf := <-got:
		want := []byte{0, 0, 0, 2, 255, 0, 0, 0, 0, 0}
		for i := range want {
			if buf[i] != want[i] {
				t.Errorf("wrong stream frame, got: %v, want: %v", buf, want)
				break
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for stream frame")
	}
}

func TestStreamConnectFailureSkipsCycle(t *testing.T) {
	// Grab a free port, then close the listener so the first connect fails.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed Listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	addr := l.Addr().String()
	l.Close()

	s := mustNew(t,
		WithLedCount(1),
		WithAddress("127.0.0.1"),
		WithPort(port),
		WithProtocol("opc"),
		WithPowerLimit(1.0))
	defer s.Close()
	s.SetPixelRGB(0, 0.0, 1.0, 0.0)
	s.Transmit() // connect fails, frame dropped, no panic
	if s.conns[0] != nil {
		t.Fatalf("connection should stay unset after failed connect")
	}

	// Bring the peer up; the next Transmit reconnects and delivers.
	l, err = net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("Failed re-Listen: %v", err)
	}
	defer l.Close()
	got := make(chan []byte, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 1*3+4)
		if _, err := io.ReadFull(c, buf); err != nil {
			return
		}
		got <- buf
	}()

	s.Transmit()
	select {
	case buf := <-got:
		want := []byte{0, 0, 0, 1, 0, 255, 0}
		for i := range want {
			if buf[i] != want[i] {
				t.Errorf("wrong recovered frame, got: %v, want: %v", buf, want)
				break
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for recovered frame")
	}
}

func TestInterruptedStreamSendDropsConnection(t *testing.T) {
	s := mustNew(t, WithLedCount(1), WithProtocol("opc"), WithPowerLimit(1.0))
	local, remote := net.Pipe()
	remote.Close() // every write on local now fails
	s.conns[0] = local

	s.send(0)
	if s.conns[0] != nil {
		t.Errorf("failed stream send should drop the connection for reconnect")
	}
}

func TestDatagramSendFailureKeepsConnection(t *testing.T) {
	s := mustNew(t, WithLedCount(1), WithPowerLimit(1.0))
	local, remote := net.Pipe()
	remote.Close()
	s.conns[0] = local

	s.send(0)
	if s.conns[0] == nil {
		t.Errorf("datagram sends are fire-and-forget, connection should be kept")
	}
}
