package tsdemux

// MPEG-2 CRC32 (poly 0x04c11db7, no reflection, init 0xffffffff). This is not
// the IEEE table hash/crc32 builds, hence the local one. Same approach as the
// vlc muxer: a static table traded for 1kb of memory at start.
// https://github.com/videolan/vlc/blob/master/modules/mux/mpeg/ps.c

const crc32Polynomial = uint32(0xffffffff)

var tableCRC32 [256]uint32

func init() {
	for i := uint32(0); i < 256; i++ {
		crc := i << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 > 0 {
				crc = crc<<1 ^ 0x04c11db7
			} else {
				crc <<= 1
			}
		}
		tableCRC32[i] = crc
	}
}

func computeCRC32(bs []byte) uint32 {
	return updateCRC32(crc32Polynomial, bs)
}

func updateCRC32(iCrc uint32, bs []byte) uint32 {
	for _, b := range bs {
		iCrc = (iCrc << 8) ^ tableCRC32[((iCrc>>24)^uint32(b))&0xff]
	}
	return iCrc
}
