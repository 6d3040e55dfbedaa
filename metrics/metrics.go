// Package metrics exposes Prometheus counters for frame encoding and
// per-strip transport activity. The serve command publishes them over
// promhttp; library users get them on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesEncoded counts dirty frames encoded into transmit buffers.
	FramesEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledcast_frames_encoded_total",
		Help: "Dirty frames encoded into transmit buffers.",
	})

	// PacketsSent counts buffers fully written to a strip's socket.
	PacketsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledcast_packets_sent_total",
		Help: "Transmit buffers fully written, per strip.",
	}, []string{"strip"})

	// BytesSent counts wire bytes written per strip.
	BytesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledcast_bytes_sent_total",
		Help: "Wire bytes written, per strip.",
	}, []string{"strip"})

	// SendErrors counts failed or short writes per strip.
	SendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledcast_send_errors_total",
		Help: "Failed or interrupted sends, per strip.",
	}, []string{"strip"})

	// ConnectErrors counts failed connection attempts per strip.
	ConnectErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledcast_connect_errors_total",
		Help: "Failed connection attempts, per strip.",
	}, []string{"strip"})
)
