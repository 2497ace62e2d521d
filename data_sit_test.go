package tsdemux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRSTSection(t *testing.T) {
	bs := []byte{
		0x0, 0x1, // Transport stream id
		0x0, 0x2, // Original network id
		0x0, 0x3, // Service id
		0x0, 0x4, // Event id
		0xf8 | RunningStatusRunning, // Running status
	}
	var offset int
	d, err := parseRSTSection(bs, &offset, len(bs))
	assert.NoError(t, err)
	assert.Equal(t, &RSTData{Events: []*RSTDataEvent{{
		EventID:           4,
		OriginalNetworkID: 2,
		RunningStatus:     RunningStatusRunning,
		ServiceID:         3,
		TransportStreamID: 1,
	}}}, d)

	// Truncated entry
	offset = 0
	_, err = parseRSTSection(bs[:5], &offset, 5)
	assert.Error(t, err)
}

func TestParseDITSection(t *testing.T) {
	var offset int
	d, err := parseDITSection([]byte{0x80}, &offset, 1)
	assert.NoError(t, err)
	assert.True(t, d.TransitionFlag)
}

func TestParseSITSection(t *testing.T) {
	bs := []byte{
		0xf0, 0x0, // Transmission info loop length
		0x0, 0x3, // Service #1 id
		RunningStatusRunning << 4, 0x3, // Service #1 running status + descriptors loop length
		DescriptorTagStreamIdentifier, 1, 7, // Service #1 descriptors
	}
	var offset int
	d, err := parseSITSection(bs, &offset, len(bs))
	assert.NoError(t, err)
	assert.Empty(t, d.TransmissionInfoLoop)
	assert.Len(t, d.Services, 1)
	assert.Equal(t, uint16(3), d.Services[0].ServiceID)
	assert.Equal(t, uint8(RunningStatusRunning), d.Services[0].RunningStatus)
	assert.Equal(t, descriptors, d.Services[0].Descriptors)
}
