package tsdemux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoAllocBytesIterator(t *testing.T) {
	i := NewNoAllocBytesIterator([]byte("12345678"))
	assert.Equal(t, 8, i.Len())
	b, err := i.NextByte()
	assert.NoError(t, err)
	assert.Equal(t, byte('1'), b)
	bs, err := i.NextBytes(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte("23"), bs)
	i.Seek(4)
	bs, err = i.NextBytesNoCopy(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte("56"), bs)
	i.Skip(-1)
	assert.Equal(t, 5, i.Offset())
	assert.True(t, i.HasBytesLeft())
	assert.Equal(t, []byte("678"), i.Dump())
	assert.False(t, i.HasBytesLeft())
	_, err = i.NextByte()
	assert.Error(t, err)
	_, err = i.NextBytes(2)
	assert.Error(t, err)

	i.Reset([]byte("ab"))
	assert.Equal(t, 0, i.Offset())
	b, err = i.NextByte()
	assert.NoError(t, err)
	assert.Equal(t, byte('a'), b)
}
