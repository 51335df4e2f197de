package balancer

import "net"

// gelfChunkMagic marks the start of a GELF chunked message.
var gelfChunkMagic = [2]byte{0x1e, 0x0f}

const (
	// minDatagramLen is the shortest payload the relay loop hands to the
	// dispatcher. Anything shorter is discarded before dispatch.
	minDatagramLen = 12

	// messageIDStart/End delimit the 8-byte chunk message ID following
	// the two magic bytes.
	messageIDStart = 2
	messageIDEnd   = 10
)

// Dispatcher selects the upstream for each received datagram. It is not
// safe for concurrent use; the relay loop is the single caller.
type Dispatcher struct {
	upstreams  []*net.UDPAddr
	handleGELF bool

	// seq counts round-robin selections. Wrapping is fine; only the
	// rotation order matters.
	seq uint64
}

// NewDispatcher builds a dispatcher over the given ordered upstream set.
// The set must be non-empty and is not copied.
func NewDispatcher(upstreams []*net.UDPAddr, handleGELF bool) *Dispatcher {
	return &Dispatcher{
		upstreams:  upstreams,
		handleGELF: handleGELF,
	}
}

// isGELFChunk reports whether payload starts with the GELF chunk magic.
// A pure byte comparison; the header is never parsed further.
func isGELFChunk(payload []byte) bool {
	return len(payload) >= 2 && payload[0] == gelfChunkMagic[0] && payload[1] == gelfChunkMagic[1]
}

// Select returns the upstream for payload. The caller guarantees
// len(payload) >= minDatagramLen.
//
// GELF chunk datagrams (first two bytes equal the chunk magic) are routed by
// CRC-8 over the message ID, so every chunk of a message reaches the same
// upstream regardless of arrival order. The round-robin counter is not
// advanced for those. Everything else rotates through the upstream set in
// index order.
func (d *Dispatcher) Select(payload []byte) *net.UDPAddr {
	var idx uint64

	if d.handleGELF && isGELFChunk(payload) {
		idx = uint64(crc8(payload[messageIDStart:messageIDEnd])) % uint64(len(d.upstreams))
		return d.upstreams[idx]
	}

	idx = d.seq % uint64(len(d.upstreams))
	d.seq++

	return d.upstreams[idx]
}

// Upstreams returns the ordered upstream set the dispatcher rotates over.
func (d *Dispatcher) Upstreams() []*net.UDPAddr {
	return d.upstreams
}
