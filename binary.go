package tsdemux

import (
	"io"

	"github.com/icza/bitio"
)

// tryReadFull reads len(p) bytes into p unless the reader already carries an
// error, in which case it's a no-op like the rest of the bitio Try API.
func tryReadFull(r *bitio.CountReader, p []byte) {
	if r.TryError == nil {
		_, r.TryError = io.ReadFull(r, p)
	}
}
