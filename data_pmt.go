package tsdemux

import "github.com/pkg/errors"

// Stream types
const (
	StreamTypeLowerBitrateVideo          = 27 // ITU-T Rec. H.264 and ISO/IEC 14496-10
	StreamTypeMPEG1Audio                 = 3  // ISO/IEC 11172-3
	StreamTypeMPEG2HalvedSampleRateAudio = 4  // ISO/IEC 13818-3
	StreamTypeMPEG2PacketizedData        = 6  // ITU-T Rec. H.222 and ISO/IEC 13818-1 i.e., DVB subtitles/VBI and AC-3
)

// PMTData represents a PMT data
// https://en.wikipedia.org/wiki/Program-specific_information
type PMTData struct {
	ElementaryStreams  []*PMTElementaryStream
	PCRPID             uint16        // The packet identifier that contains the program clock reference. If unused it is set to 0x1FFF (all bits on).
	ProgramDescriptors []*Descriptor // Program descriptors
	ProgramNumber      uint16
}

// PMTElementaryStream represents a PMT elementary stream
type PMTElementaryStream struct {
	ElementaryPID               uint16        // The packet identifier that contains the stream type data.
	ElementaryStreamDescriptors []*Descriptor // Elementary stream descriptors
	StreamType                  uint8         // This defines the structure of the data contained within the elementary packet identifier.
}

// parsePMTSection parses a PMT section
func parsePMTSection(i []byte, offset *int, offsetSectionsEnd int, tableIDExtension uint16) (d *PMTData, err error) {
	// Init
	d = &PMTData{ProgramNumber: tableIDExtension}

	if *offset+2 > offsetSectionsEnd {
		err = errors.New("tsdemux: truncated PMT section")
		return
	}

	// PCR PID
	d.PCRPID = uint16(i[*offset]&0x1f)<<8 | uint16(i[*offset+1])
	*offset += 2

	// Program descriptors
	if d.ProgramDescriptors, err = parseDescriptors(i, offset); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing program descriptors failed")
		return
	}

	// Loop until end of section data is reached
	for *offset < offsetSectionsEnd {
		if *offset+3 > offsetSectionsEnd {
			err = errors.Errorf("tsdemux: truncated PMT stream entry at offset %d", *offset)
			return
		}

		// Stream type
		e := &PMTElementaryStream{}
		e.StreamType = i[*offset]
		*offset += 1

		// Elementary PID
		e.ElementaryPID = uint16(i[*offset]&0x1f)<<8 | uint16(i[*offset+1])
		*offset += 2

		// Elementary descriptors
		if e.ElementaryStreamDescriptors, err = parseDescriptors(i, offset); err != nil {
			err = errors.Wrapf(err, "tsdemux: parsing descriptors of elementary stream %d failed", e.ElementaryPID)
			return
		}

		// Add elementary stream
		d.ElementaryStreams = append(d.ElementaryStreams, e)
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *PMTData) merge(o *PMTData) {
	d.PCRPID = o.PCRPID
	d.ProgramDescriptors = append(d.ProgramDescriptors, o.ProgramDescriptors...)
	d.ElementaryStreams = append(d.ElementaryStreams, o.ElementaryStreams...)
}

// pids returns the set of elementary PIDs the PMT references.
func (d *PMTData) pids() map[uint16]struct{} {
	m := make(map[uint16]struct{}, len(d.ElementaryStreams))
	for _, e := range d.ElementaryStreams {
		m[e.ElementaryPID] = struct{}{}
	}
	return m
}
