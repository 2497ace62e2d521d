package tsdemux

import "github.com/pkg/errors"

// PATData represents a PAT data
// https://en.wikipedia.org/wiki/Program-specific_information
type PATData struct {
	Programs          []*PATProgram
	TransportStreamID uint16
}

// PATProgram represents a PAT program
type PATProgram struct {
	ProgramMapID  uint16 // The packet identifier that contains the associated PMT. A program number of 0 makes this the network (NIT) packet identifier instead.
	ProgramNumber uint16 // Relates to the Table ID extension in the associated PMT.
}

// parsePATSection parses a PAT section
func parsePATSection(i []byte, offset *int, offsetSectionsEnd int, tableIDExtension uint16) (d *PATData, err error) {
	// Init
	d = &PATData{TransportStreamID: tableIDExtension}

	// Loop until end of section data is reached
	for *offset < offsetSectionsEnd {
		if *offset+4 > offsetSectionsEnd {
			err = errors.Errorf("tsdemux: truncated PAT entry at offset %d", *offset)
			return
		}
		d.Programs = append(d.Programs, &PATProgram{
			ProgramMapID:  uint16(i[*offset+2]&0x1f)<<8 | uint16(i[*offset+3]),
			ProgramNumber: uint16(i[*offset])<<8 | uint16(i[*offset+1]),
		})
		*offset += 4
	}
	return
}

// merge folds another section of the same version into the table data.
func (d *PATData) merge(o *PATData) {
	d.Programs = append(d.Programs, o.Programs...)
}

// pids returns the set of PIDs the PAT references, PMT and network alike.
func (d *PATData) pids() map[uint16]struct{} {
	m := make(map[uint16]struct{}, len(d.Programs))
	for _, p := range d.Programs {
		m[p.ProgramMapID] = struct{}{}
	}
	return m
}
