package tsdemux

import (
	"github.com/pkg/errors"
)

// Stream IDs
const (
	StreamIDPrivateStream1 = 189
	StreamIDPaddingStream  = 190
	StreamIDPrivateStream2 = 191
)

// PESHeader represents the fixed 6-byte head of a PES packet. The optional
// header and the payload layer are out of scope; PES filters only track
// framing so continuity stays verified on elementary PIDs.
// http://dvd.sourceforge.net/dvdinfo/pes-hdr.html
type PESHeader struct {
	PacketLength uint16 // Number of bytes remaining in the packet after this field. Zero means unbounded and is only valid for video elementary streams.
	StreamID     uint8  // Examples: Audio streams (0xC0-0xDF), Video streams (0xE0-0xEF)
}

// parsePESHeader parses the PES head at the front of bs.
func parsePESHeader(bs []byte) (h PESHeader, err error) {
	if len(bs) < pesHeaderSize {
		err = errors.Errorf("tsdemux: PES header needs %d bytes, got %d", pesHeaderSize, len(bs))
		return
	}
	if bs[0] != 0 || bs[1] != 0 || bs[2] != 1 {
		err = errors.New("tsdemux: PES packet must start with a start code prefix")
		return
	}
	h = PESHeader{
		PacketLength: uint16(bs[4])<<8 | uint16(bs[5]),
		StreamID:     bs[3],
	}
	return
}
