package tsdemux

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

var nit = &NITData{
	NetworkDescriptors: descriptors,
	NetworkID:          1,
	TransportStreams: []*NITDataTransportStream{{
		OriginalNetworkID:    3,
		TransportDescriptors: descriptors,
		TransportStreamID:    2,
	}},
}

func nitBytes() []byte {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	writeBinary(w, "0000")         // Reserved
	descriptorsBytes(w)            // Network descriptors
	writeBinary(w, "0000")         // Reserved
	writeBinary(w, "000000001001") // Transport stream loop length
	w.TryWriteBits(2, 16)          // Transport stream #1 id
	w.TryWriteBits(3, 16)          // Transport stream #1 original network id
	writeBinary(w, "0000")         // Reserved
	descriptorsBytes(w)            // Transport stream #1 descriptors
	return buf.Bytes()
}

func TestParseNITSection(t *testing.T) {
	b := nitBytes()
	var offset int
	d, err := parseNITSection(b, &offset, uint16(1))
	assert.NoError(t, err)
	assert.Equal(t, nit, d)
}

func TestParseBATSection(t *testing.T) {
	b := nitBytes()
	var offset int
	d, err := parseBATSection(b, &offset, uint16(7))
	assert.NoError(t, err)
	assert.Equal(t, &BATData{
		BouquetDescriptors: descriptors,
		BouquetID:          7,
		TransportStreams:   nit.TransportStreams,
	}, d)
}
