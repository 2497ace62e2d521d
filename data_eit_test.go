package tsdemux

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

var eit = &EITData{
	Events: []*EITDataEvent{{
		Descriptors:    descriptors,
		Duration:       dvbDurationSeconds,
		EventID:        6,
		HasFreeCSAMode: true,
		RunningStatus:  2,
		StartTime:      dvbTime,
	}},
	LastTableID:              4,
	OriginalNetworkID:        2,
	SegmentLastSectionNumber: 3,
	ServiceID:                1,
	TransportStreamID:        1,
}

func eitBytes() []byte {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	w.TryWriteBits(1, 16)               // Transport stream ID
	w.TryWriteBits(2, 16)               // Original network ID
	w.TryWriteByte(3)                   // Segment last section number
	w.TryWriteByte(4)                   // Last table ID
	w.TryWriteBits(6, 16)               // Event #1 id
	w.TryWrite(dvbTimeBytes)            // Event #1 start time
	w.TryWrite(dvbDurationSecondsBytes) // Event #1 duration
	writeBinary(w, "010")               // Event #1 running status
	writeBinary(w, "1")                 // Event #1 free CA mode
	descriptorsBytes(w)                 // Event #1 descriptors
	return buf.Bytes()
}

func TestParseEITSection(t *testing.T) {
	d, err := parseEITSection(eitBytes(), uint16(1))
	assert.NoError(t, err)
	assert.Equal(t, eit, d)
}
