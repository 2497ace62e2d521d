package tsdemux

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strideBytes(packetSize, count int) []byte {
	bs := bytes.Repeat([]byte{0}, packetSize*count)
	for idx := 0; idx < count; idx++ {
		bs[idx*packetSize] = syncByte
	}
	return bs
}

func TestDetectPacketSize(t *testing.T) {
	// No sync byte at all
	_, err := DetectPacketSize(bytes.Repeat([]byte{0}, 512))
	assert.EqualError(t, err, ErrNoSyncByte.Error())

	// A lone sync byte doesn't establish a cadence
	_, err = DetectPacketSize(append([]byte{syncByte}, bytes.Repeat([]byte{0}, 511)...))
	assert.EqualError(t, err, ErrPacketSizeUndetected.Error())

	// All three strides, with leading garbage
	for _, packetSize := range []int{MpegTsPacketSize188, MpegTsPacketSize192, MpegTsPacketSize204} {
		bs := append([]byte{1, 2, 3}, strideBytes(packetSize, 10)...)
		v, err := DetectPacketSize(bs)
		assert.NoError(t, err)
		assert.Equal(t, packetSize, v)
	}
}

func TestDetectFilePacketSize(t *testing.T) {
	_, err := DetectFilePacketSize("/nonexistent/stream.ts")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "stream.ts")
	assert.NoError(t, os.WriteFile(path, strideBytes(MpegTsPacketSize192, 10), 0o644))
	v, err := DetectFilePacketSize(path)
	assert.NoError(t, err)
	assert.Equal(t, MpegTsPacketSize192, v)
}
