package tsdemux

import "github.com/pkg/errors"

// RSTData represents a RST data: instantaneous running status changes.
// Page: 40 | Chapter: 5.2.7 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type RSTData struct {
	Events []*RSTDataEvent
}

// RSTDataEvent represents one running status entry
type RSTDataEvent struct {
	EventID           uint16
	OriginalNetworkID uint16
	RunningStatus     uint8
	ServiceID         uint16
	TransportStreamID uint16
}

// parseRSTSection parses a RST section
func parseRSTSection(i []byte, offset *int, offsetSectionsEnd int) (d *RSTData, err error) {
	d = &RSTData{}
	for *offset < offsetSectionsEnd {
		if *offset+9 > offsetSectionsEnd {
			err = errors.Errorf("tsdemux: truncated RST entry at offset %d", *offset)
			return
		}
		d.Events = append(d.Events, &RSTDataEvent{
			EventID:           uint16(i[*offset+6])<<8 | uint16(i[*offset+7]),
			OriginalNetworkID: uint16(i[*offset+2])<<8 | uint16(i[*offset+3]),
			RunningStatus:     i[*offset+8] & 0x7,
			ServiceID:         uint16(i[*offset+4])<<8 | uint16(i[*offset+5]),
			TransportStreamID: uint16(i[*offset])<<8 | uint16(i[*offset+1]),
		})
		*offset += 9
	}
	return
}

// DITData represents a DIT data: a marker around partial TS transitions.
// Page: 41 | Chapter: 5.2.8 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type DITData struct {
	TransitionFlag bool
}

// parseDITSection parses a DIT section
func parseDITSection(i []byte, offset *int, offsetSectionsEnd int) (d *DITData, err error) {
	if *offset >= offsetSectionsEnd {
		err = errors.New("tsdemux: truncated DIT section")
		return
	}
	d = &DITData{TransitionFlag: i[*offset]&0x80 > 0}
	*offset += 1
	return
}

// SITData represents a SIT data: the service summary of a partial TS.
// Page: 41 | Chapter: 5.2.9 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
type SITData struct {
	Services             []*SITDataService
	TransmissionInfoLoop []*Descriptor
}

// SITDataService represents a SIT data service
type SITDataService struct {
	Descriptors   []*Descriptor
	RunningStatus uint8
	ServiceID     uint16
}

// parseSITSection parses a SIT section
func parseSITSection(i []byte, offset *int, offsetSectionsEnd int) (d *SITData, err error) {
	d = &SITData{}

	// Transmission info descriptors
	if d.TransmissionInfoLoop, err = parseDescriptors(i, offset); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing transmission info descriptors failed")
		return
	}

	// Services
	for *offset < offsetSectionsEnd {
		if *offset+2 > offsetSectionsEnd {
			err = errors.Errorf("tsdemux: truncated SIT service entry at offset %d", *offset)
			return
		}
		s := &SITDataService{}
		s.ServiceID = uint16(i[*offset])<<8 | uint16(i[*offset+1])
		*offset += 2
		if *offset < offsetSectionsEnd {
			s.RunningStatus = i[*offset] >> 4 & 0x7
		}
		if s.Descriptors, err = parseDescriptors(i, offset); err != nil {
			err = errors.Wrapf(err, "tsdemux: parsing descriptors of service %d failed", s.ServiceID)
			return
		}
		d.Services = append(d.Services, s)
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *SITData) merge(o *SITData) {
	d.TransmissionInfoLoop = append(d.TransmissionInfoLoop, o.TransmissionInfoLoop...)
	d.Services = append(d.Services, o.Services...)
}
