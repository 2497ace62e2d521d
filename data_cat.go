package tsdemux

import "github.com/pkg/errors"

// CATData represents a CAT data: the conditional access descriptors applying to
// the whole multiplex. There is no descriptor loop length; descriptors fill the
// section body.
// Chapter: 2.4.4.6 | ITU-T H.222.0
type CATData struct {
	Descriptors []*Descriptor
}

// parseCATSection parses a CAT section
func parseCATSection(i []byte, offset *int, offsetSectionsEnd int) (d *CATData, err error) {
	d = &CATData{}
	if d.Descriptors, err = parseDescriptorList(i, offset, offsetSectionsEnd); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing CAT descriptors failed")
		return
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *CATData) merge(o *CATData) {
	d.Descriptors = append(d.Descriptors, o.Descriptors...)
}

// TSDTData represents a TSDT data: descriptors relating to the overall
// transport stream. Same body shape as the CAT.
// Chapter: 2.4.4.12 | ITU-T H.222.0
type TSDTData struct {
	Descriptors []*Descriptor
}

// parseTSDTSection parses a TSDT section
func parseTSDTSection(i []byte, offset *int, offsetSectionsEnd int) (d *TSDTData, err error) {
	d = &TSDTData{}
	if d.Descriptors, err = parseDescriptorList(i, offset, offsetSectionsEnd); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing TSDT descriptors failed")
		return
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *TSDTData) merge(o *TSDTData) {
	d.Descriptors = append(d.Descriptors, o.Descriptors...)
}
