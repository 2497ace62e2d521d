package tsdemux

import (
	"bytes"
	"testing"
	"time"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/assert"
)

var (
	dvbDurationSeconds      = time.Hour + 45*time.Minute + 30*time.Second
	dvbDurationSecondsBytes = []byte{0x1, 0x45, 0x30} // 014530
	dvbTime                 = time.Date(1993, time.October, 13, 12, 45, 0, 0, time.UTC)
	dvbTimeBytes            = []byte{0xc0, 0x79, 0x12, 0x45, 0x0} // MJD 49273
)

func TestParseDVBTime(t *testing.T) {
	r := bitio.NewCountReader(bytes.NewReader(dvbTimeBytes))
	d, err := parseDVBTime(r)
	assert.NoError(t, err)
	assert.Equal(t, dvbTime, d)
	assert.Equal(t, int64(40), r.BitsCount)
}

func TestParseDVBTimeEpoch(t *testing.T) {
	// MJD 40587 is 1970-01-01
	r := bitio.NewCountReader(bytes.NewReader([]byte{0x9e, 0x8b, 0x0, 0x0, 0x0}))
	d, err := parseDVBTime(r)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDVBTimeUndefined(t *testing.T) {
	r := bitio.NewCountReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff}))
	d, err := parseDVBTime(r)
	assert.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestParseDVBDurationSeconds(t *testing.T) {
	r := bitio.NewCountReader(bytes.NewReader(dvbDurationSecondsBytes))
	d, err := parseDVBDurationSeconds(r)
	assert.NoError(t, err)
	assert.Equal(t, dvbDurationSeconds, d)
}

func TestParseDVBDurationMinutes(t *testing.T) {
	r := bitio.NewCountReader(bytes.NewReader([]byte{0x2, 0x30}))
	d, err := parseDVBDurationMinutes(r)
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Hour+30*time.Minute, d)
}
