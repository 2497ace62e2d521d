package tsdemux

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

var pat = &PATData{
	Programs: []*PATProgram{
		{ProgramMapID: 3, ProgramNumber: 2},
		{ProgramMapID: 5, ProgramNumber: 4},
	},
	TransportStreamID: 1,
}

func patBytes() []byte {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	w.TryWriteBits(2, 16)           // Program #1 number
	writeBinary(w, "111")           // Program #1 reserved bits
	writeBinary(w, "0000000000011") // Program #1 map ID
	w.TryWriteBits(4, 16)           // Program #2 number
	writeBinary(w, "111")           // Program #2 reserved bits
	writeBinary(w, "0000000000101") // Program #2 map ID
	return buf.Bytes()
}

func TestParsePATSection(t *testing.T) {
	b := patBytes()
	var offset int
	d, err := parsePATSection(b, &offset, len(b), uint16(1))
	assert.NoError(t, err)
	assert.Equal(t, pat, d)

	// Truncated entry
	offset = 0
	_, err = parsePATSection(b[:6], &offset, 6, uint16(1))
	assert.Error(t, err)
}

func TestPATPids(t *testing.T) {
	assert.Equal(t, map[uint16]struct{}{3: {}, 5: {}}, pat.pids())
}

func TestPATMerge(t *testing.T) {
	d := &PATData{TransportStreamID: 1, Programs: []*PATProgram{{ProgramMapID: 3, ProgramNumber: 2}}}
	d.merge(&PATData{TransportStreamID: 1, Programs: []*PATProgram{{ProgramMapID: 5, ProgramNumber: 4}}})
	assert.Equal(t, pat, d)
}
