package balancer

import "testing"

// TestCRC8KnownVectors checks the checksum byte-for-byte against reference
// values produced by the canonical bit-loop implementation.
func TestCRC8KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint8
	}{
		{"empty", nil, 0x00},
		{"zero message id", make([]byte, 8), 0x00},
		{"ascii message id", []byte("ABCDEFGH"), 0x52},
		{"binary message id", []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}, 0x7e},
		{"all ones", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 0x00},
		{"single zero byte", []byte{0x00}, 0x00},
		{"single one byte", []byte{0x01}, 0x02},
		{"single letter", []byte{'a'}, 0x43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := crc8(tt.in); got != tt.want {
				t.Errorf("crc8(%v) = 0x%02x, want 0x%02x", tt.in, got, tt.want)
			}
		})
	}
}

// TestCRC8Deterministic verifies repeated calls over the same input agree.
func TestCRC8Deterministic(t *testing.T) {
	id := []byte("msgid-01")

	first := crc8(id)
	for i := 0; i < 100; i++ {
		if got := crc8(id); got != first {
			t.Fatalf("crc8 not deterministic: 0x%02x then 0x%02x", first, got)
		}
	}
}
