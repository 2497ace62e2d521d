package tsdemux

import (
	"bytes"
	"log"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

// writeBinary writes a string of 0s and 1s bit by bit.
func writeBinary(w *bitio.Writer, str string) {
	for _, r := range str {
		switch r {
		case '1':
			w.TryWriteBool(true)
		case '0':
			w.TryWriteBool(false)
		default:
			log.Fatalf("invalid rune: %v", r)
		}
	}
}

func TestTryReadFull(t *testing.T) {
	r := bitio.NewCountReader(bytes.NewReader([]byte{1, 2, 3}))
	p := make([]byte, 2)
	tryReadFull(r, p)
	assert.NoError(t, r.TryError)
	assert.Equal(t, []byte{1, 2}, p)

	// Short read sets TryError
	tryReadFull(r, p)
	assert.Error(t, r.TryError)

	// Carried error makes it a no-op
	p = []byte{9, 9}
	tryReadFull(r, p)
	assert.Equal(t, []byte{9, 9}, p)
}
