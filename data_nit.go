package tsdemux

import "github.com/pkg/errors"

// NITData represents a NIT data
// Page: 29 | Chapter: 5.2.1 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type NITData struct {
	NetworkDescriptors []*Descriptor
	NetworkID          uint16
	TransportStreams   []*NITDataTransportStream
}

// NITDataTransportStream represents a NIT data transport stream
type NITDataTransportStream struct {
	OriginalNetworkID    uint16
	TransportDescriptors []*Descriptor
	TransportStreamID    uint16
}

// parseNITSection parses a NIT section
func parseNITSection(i []byte, offset *int, tableIDExtension uint16) (d *NITData, err error) {
	// Init
	d = &NITData{NetworkID: tableIDExtension}

	// Network descriptors
	if d.NetworkDescriptors, err = parseDescriptors(i, offset); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing network descriptors failed")
		return
	}

	// Transport streams
	if d.TransportStreams, err = parseNITTransportStreams(i, offset); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing transport streams failed")
		return
	}
	return
}

// parseNITTransportStreams parses the 12-bit length-prefixed transport stream
// loop shared by the NIT and the BAT.
func parseNITTransportStreams(i []byte, offset *int) (o []*NITDataTransportStream, err error) {
	// Transport stream loop length
	if *offset+2 > len(i) {
		err = errors.New("tsdemux: missing transport stream loop length")
		return
	}
	transportStreamLoopLength := int(uint16(i[*offset]&0xf)<<8 | uint16(i[*offset+1]))
	*offset += 2

	// Transport stream loop
	transportStreamLoopLength += *offset
	if transportStreamLoopLength > len(i) {
		err = errors.New("tsdemux: transport stream loop overruns section")
		return
	}
	for *offset < transportStreamLoopLength {
		if *offset+4 > transportStreamLoopLength {
			err = errors.Errorf("tsdemux: truncated transport stream entry at offset %d", *offset)
			return
		}

		// Transport stream ID
		ts := &NITDataTransportStream{}
		ts.TransportStreamID = uint16(i[*offset])<<8 | uint16(i[*offset+1])
		*offset += 2

		// Original network ID
		ts.OriginalNetworkID = uint16(i[*offset])<<8 | uint16(i[*offset+1])
		*offset += 2

		// Transport descriptors
		if ts.TransportDescriptors, err = parseDescriptors(i, offset); err != nil {
			err = errors.Wrapf(err, "tsdemux: parsing descriptors of transport stream %d failed", ts.TransportStreamID)
			return
		}

		// Append transport stream
		o = append(o, ts)
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *NITData) merge(o *NITData) {
	d.NetworkDescriptors = append(d.NetworkDescriptors, o.NetworkDescriptors...)
	d.TransportStreams = append(d.TransportStreams, o.TransportStreams...)
}

// BATData represents a BAT data. Same body shape as the NIT with bouquet
// descriptors in place of network descriptors.
// Page: 31 | Chapter: 5.2.2 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type BATData struct {
	BouquetDescriptors []*Descriptor
	BouquetID          uint16
	TransportStreams   []*NITDataTransportStream
}

// parseBATSection parses a BAT section
func parseBATSection(i []byte, offset *int, tableIDExtension uint16) (d *BATData, err error) {
	// Init
	d = &BATData{BouquetID: tableIDExtension}

	// Bouquet descriptors
	if d.BouquetDescriptors, err = parseDescriptors(i, offset); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing bouquet descriptors failed")
		return
	}

	// Transport streams
	if d.TransportStreams, err = parseNITTransportStreams(i, offset); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing transport streams failed")
		return
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *BATData) merge(o *BATData) {
	d.BouquetDescriptors = append(d.BouquetDescriptors, o.BouquetDescriptors...)
	d.TransportStreams = append(d.TransportStreams, o.TransportStreams...)
}
