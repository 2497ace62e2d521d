package tsdemux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// caDescriptorBytes is a CA descriptor the way a CAT carries it: no loop
// length, descriptors fill the body.
var caDescriptorBytes = []byte{DescriptorTagCA, 4, 0x0b, 0x00, 0xe0, 0x64}

func TestParseCATSection(t *testing.T) {
	var offset int
	d, err := parseCATSection(caDescriptorBytes, &offset, len(caDescriptorBytes))
	assert.NoError(t, err)
	assert.Len(t, d.Descriptors, 1)
	assert.Equal(t, &DescriptorCA{
		CAPID:       0x64,
		CASystemID:  0xb00,
		PrivateData: []byte{},
	}, d.Descriptors[0].CA)
}

func TestParseTSDTSection(t *testing.T) {
	bs := []byte{DescriptorTagStreamIdentifier, 1, 7}
	var offset int
	d, err := parseTSDTSection(bs, &offset, len(bs))
	assert.NoError(t, err)
	assert.Equal(t, descriptors, d.Descriptors)
}
