package tsdemux

import (
	"os"

	"github.com/pkg/errors"
)

// packetProbeSize is the number of bytes examined when detecting the packet
// size of a file.
const packetProbeSize = 4096

// DetectPacketSize detects the packet size of a stream by finding the first
// sync byte and testing the 188/192/204 candidate strides against it. The
// stride with the most aligned sync bytes wins.
func DetectPacketSize(bs []byte) (packetSize int, err error) {
	// Find the first sync byte
	offset := -1
	for idx, b := range bs {
		if b == syncByte {
			offset = idx
			break
		}
	}
	if offset == -1 {
		err = ErrNoSyncByte
		return
	}

	// Count aligned sync bytes per candidate stride
	var best int
	for _, candidate := range []int{MpegTsPacketSize188, MpegTsPacketSize192, MpegTsPacketSize204} {
		var count int
		for idx := offset + candidate; idx < len(bs); idx += candidate {
			if bs[idx] != syncByte {
				break
			}
			count++
		}
		if count > best {
			best = count
			packetSize = candidate
		}
	}

	// A lone sync byte doesn't establish a cadence
	if best == 0 {
		err = ErrPacketSizeUndetected
		return
	}
	return
}

// DetectFilePacketSize detects the packet size of a file by probing its first
// 4 KiB.
func DetectFilePacketSize(path string) (packetSize int, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "tsdemux: opening %s failed", path)
		return
	}
	defer f.Close()

	b := make([]byte, packetProbeSize)
	n, err := f.Read(b)
	if err != nil {
		err = errors.Wrapf(err, "tsdemux: reading first %d bytes of %s failed", packetProbeSize, path)
		return
	}

	if packetSize, err = DetectPacketSize(b[:n]); err != nil {
		err = errors.Wrapf(err, "tsdemux: detecting packet size of %s failed", path)
		return
	}
	return
}
