package strip

import "testing"

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{0, 0},
		{254.9, 254}, // truncation toward zero, not rounding
		{255.0, 255},
		{300, 255},
		{-1, 0},
		{-0.5, 0},
		{0.999, 0},
		{1.0, 1},
	}
	for _, test := range tests {
		if got := clampByte(test.in); got != test.want {
			t.Errorf("clampByte(%v) got: %d, want: %d", test.in, got, test.want)
		}
	}
}

func TestWriteCountHeader(t *testing.T) {
	tests := []struct {
		name  string
		proto string
		count int
		want  []byte
	}{
		{"opcSmall", "opc", 2, []byte{0, 0, 0, 2}},
		{"opcTwoBytes", "opc", 600, []byte{0, 0, 2, 88}},
		{"opcHighByteClamped", "opc", 70000, []byte{0, 0, 255, 112}},
		{"espNoHeader", "esp", 600, []byte{0, 0, 0}},
	}
	for _, test := range tests {
		p := Protocols[test.proto]
		buf := make([]byte, p.HeaderLen)
		writeCountHeader(buf, p, test.count)
		for i := range test.want {
			if buf[i] != test.want[i] {
				t.Errorf("%s: header got: %v, want: %v", test.name, buf, test.want)
				break
			}
		}
	}
}

func TestProtocolTable(t *testing.T) {
	esp := Protocols["esp"]
	if esp.Kind != Datagram || esp.HeaderLen != 3 {
		t.Errorf("esp descriptor wrong: %+v", esp)
	}
	if esp.G != 0 || esp.R != 1 || esp.B != 2 {
		t.Errorf("esp channel order should be G,R,B: %+v", esp)
	}
	opc := Protocols["opc"]
	if opc.Kind != Stream || opc.HeaderLen != 4 {
		t.Errorf("opc descriptor wrong: %+v", opc)
	}
	if opc.R != 0 || opc.G != 1 || opc.B != 2 {
		t.Errorf("opc channel order should be R,G,B: %+v", opc)
	}
	if opc.CountHi != 2 || opc.CountLo != 3 {
		t.Errorf("opc count header offsets wrong: %+v", opc)
	}
}
