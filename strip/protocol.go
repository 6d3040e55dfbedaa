package strip

// Connection kinds for the supported wire protocols.
const (
	Datagram = iota
	Stream
)

// Protocol describes the wire layout of one LED strip protocol. All
// differences between protocols are data-driven: connection kind, header
// size, per-channel byte order and the optional pixel-count header bytes.
type Protocol struct {
	Kind      int
	HeaderLen int
	R, G, B   int // byte offset of each channel within a pixel
	CountHi   int // buffer position of the LED-count high byte, -1 if none
	CountLo   int // buffer position of the LED-count low byte, -1 if none
}

// Protocols maps selector strings to their descriptors. "esp" is the UDP
// layout used by the esp8266ws2812i2s firmware (3-byte zero header, GRB
// channel order); "opc" is the Open Pixel Control TCP layout (4-byte
// header carrying the LED count big-endian in bytes 2 and 3, RGB order).
var Protocols = map[string]Protocol{
	"esp": {Kind: Datagram, HeaderLen: 3, R: 1, G: 0, B: 2, CountHi: -1, CountLo: -1},
	"opc": {Kind: Stream, HeaderLen: 4, R: 0, G: 1, B: 2, CountHi: 2, CountLo: 3},
}
