package tsdemux

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

var pmt = &PMTData{
	ElementaryStreams: []*PMTElementaryStream{{
		ElementaryPID:               2730,
		ElementaryStreamDescriptors: descriptors,
		StreamType:                  StreamTypeMPEG1Audio,
	}},
	PCRPID:             5461,
	ProgramDescriptors: descriptors,
	ProgramNumber:      1,
}

func pmtBytes() []byte {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	writeBinary(w, "111")                       // Reserved bits
	writeBinary(w, "1010101010101")             // PCR PID
	writeBinary(w, "1111")                      // Reserved
	descriptorsBytes(w)                         // Program descriptors
	w.TryWriteByte(uint8(StreamTypeMPEG1Audio)) // Stream #1 type
	writeBinary(w, "111")                       // Stream #1 reserved
	writeBinary(w, "0101010101010")             // Stream #1 PID
	writeBinary(w, "1111")                      // Stream #1 reserved
	descriptorsBytes(w)                         // Stream #1 descriptors
	return buf.Bytes()
}

func TestParsePMTSection(t *testing.T) {
	b := pmtBytes()
	var offset int
	d, err := parsePMTSection(b, &offset, len(b), uint16(1))
	assert.NoError(t, err)
	assert.Equal(t, pmt, d)
}

func TestPMTPids(t *testing.T) {
	assert.Equal(t, map[uint16]struct{}{2730: {}}, pmt.pids())
}
