package tsdemux

import (
	"bytes"
	"time"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// TDTData represents a TDT data: the current UTC time of the multiplex.
// Page: 39 | Chapter: 5.2.5 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type TDTData struct {
	UTCTime time.Time
}

// parseTDTSection parses a TDT section
func parseTDTSection(i []byte) (d *TDTData, err error) {
	d = &TDTData{}
	r := bitio.NewCountReader(bytes.NewReader(i))
	if d.UTCTime, err = parseDVBTime(r); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing UTC time failed")
		return
	}
	return d, r.TryError
}

// TOTData represents a TOT data
// Page: 39 | Chapter: 5.2.6 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type TOTData struct {
	Descriptors []*Descriptor
	UTCTime     time.Time
}

// parseTOTSection parses a TOT section
func parseTOTSection(i []byte) (d *TOTData, err error) {
	d = &TOTData{}
	r := bitio.NewCountReader(bytes.NewReader(i))

	// UTC time
	if d.UTCTime, err = parseDVBTime(r); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing UTC time failed")
		return
	}

	// Descriptors
	_ = r.TryReadBits(4) // Reserved
	if d.Descriptors, err = parseDescriptorsReader(r); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing descriptors failed")
		return
	}
	return d, r.TryError
}
