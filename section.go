package tsdemux

import (
	"github.com/pkg/errors"
)

// Table IDs
// Page: 28 | https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	TableIDPAT  = 0x00
	TableIDCAT  = 0x01
	TableIDPMT  = 0x02
	TableIDTSDT = 0x03
	TableIDBAT  = 0x4a
	TableIDTDT  = 0x70
	TableIDRST  = 0x71
	TableIDST   = 0x72
	TableIDTOT  = 0x73
	TableIDDIT  = 0x7e
	TableIDSIT  = 0x7f
	TableIDNull = 0xff

	TableIDNITActual = 0x40
	TableIDNITOther  = 0x41
	TableIDSDTActual = 0x42
	TableIDSDTOther  = 0x46

	TableIDEITPresentFollowingActual = 0x4e
	TableIDEITPresentFollowingOther  = 0x4f
	TableIDEITScheduleActualStart    = 0x50
	TableIDEITScheduleActualEnd      = 0x5f
	TableIDEITScheduleOtherStart     = 0x60
	TableIDEITScheduleOtherEnd       = 0x6f
)

// Section layout constants
const (
	sectionShortHeaderSize = 3    // table_id + section_length
	sectionLongHeaderSize  = 8    // table_id through last_section_number
	sectionCRC32Size       = 4    // trailing CRC of long sections
	maxSectionLength       = 4093 // section_length upper bound per H.222.0
	pesHeaderSize          = 6    // start code prefix + stream id + packet length
	startingBufferLength   = 184  // one packet worth of payload
)

// SectionHeader represents the 8-byte head of a PSI/SI section. TableIDExtension
// carries the transport stream id, program number or service id depending on
// the table.
type SectionHeader struct {
	CurrentNextIndicator   bool
	LastSectionNumber      uint8
	PrivateBit             bool
	SectionLength          uint16
	SectionNumber          uint8
	SectionSyntaxIndicator bool
	TableID                uint8
	TableIDExtension       uint16
	VersionNumber          uint8
}

// sectionHeaderSize returns the head size the leading bytes of bs announce: 8
// bytes when the section carries a syntax header, 3 otherwise (TDT, RST, ...).
// bs must hold at least sectionShortHeaderSize bytes.
func sectionHeaderSize(bs []byte) int {
	if bs[1]&0x80 > 0 {
		return sectionLongHeaderSize
	}
	return sectionShortHeaderSize
}

// parseSectionHeader parses a section header out of the leading bytes of bs.
// Sections without a syntax header get a zero version and section number and
// are considered current.
func parseSectionHeader(bs []byte) (h SectionHeader, err error) {
	if len(bs) < sectionShortHeaderSize {
		err = errors.Errorf("tsdemux: section header needs %d bytes, got %d", sectionShortHeaderSize, len(bs))
		return
	}
	h = SectionHeader{
		PrivateBit:             bs[1]&0x40 > 0,
		SectionLength:          uint16(bs[1]&0xf)<<8 | uint16(bs[2]),
		SectionSyntaxIndicator: bs[1]&0x80 > 0,
		TableID:                bs[0],
	}
	if h.SectionLength > maxSectionLength {
		err = ErrSectionLengthTooLarge
		return
	}
	if !h.SectionSyntaxIndicator {
		h.CurrentNextIndicator = true
		return
	}
	if len(bs) < sectionLongHeaderSize {
		err = errors.Errorf("tsdemux: section header needs %d bytes, got %d", sectionLongHeaderSize, len(bs))
		return
	}
	h.CurrentNextIndicator = bs[5]&0x1 > 0
	h.LastSectionNumber = bs[7]
	h.SectionNumber = bs[6]
	h.TableIDExtension = uint16(bs[3])<<8 | uint16(bs[4])
	h.VersionNumber = uint8(bs[5]&0x3f) >> 1
	if h.SectionNumber > h.LastSectionNumber {
		err = errors.Errorf("tsdemux: section number %d exceeds last section number %d", h.SectionNumber, h.LastSectionNumber)
		return
	}
	return
}

// headerSize returns the number of head bytes consumed before the payload.
func (h SectionHeader) headerSize() int {
	if h.SectionSyntaxIndicator {
		return sectionLongHeaderSize
	}
	return sectionShortHeaderSize
}

// expectedPayloadSize returns the number of bytes following the head up to and
// including the CRC when there is one.
func (h SectionHeader) expectedPayloadSize() int {
	if h.SectionSyntaxIndicator {
		if h.SectionLength < 5 {
			return 0
		}
		return int(h.SectionLength) - 5
	}
	return int(h.SectionLength)
}

// hasCRC32 checks whether the table carries a trailing CRC32. Among the
// syntaxless sections only the TOT does.
func hasCRC32(tableID uint8) bool {
	return tableID == TableIDPAT ||
		tableID == TableIDCAT ||
		tableID == TableIDPMT ||
		tableID == TableIDTSDT ||
		tableID == TableIDNITActual || tableID == TableIDNITOther ||
		tableID == TableIDSDTActual || tableID == TableIDSDTOther ||
		tableID == TableIDBAT ||
		tableID == TableIDTOT ||
		tableID == TableIDSIT ||
		isEITTableID(tableID)
}

// isEITTableID checks whether the table id belongs to the EIT family
// (present/following and schedule, actual and other TS).
func isEITTableID(tableID uint8) bool {
	return tableID >= TableIDEITPresentFollowingActual && tableID <= TableIDEITScheduleOtherEnd
}

// TableTypeString returns a human readable name for a table id.
func TableTypeString(tableID uint8) string {
	switch {
	case tableID == TableIDPAT:
		return "PAT"
	case tableID == TableIDCAT:
		return "CAT"
	case tableID == TableIDPMT:
		return "PMT"
	case tableID == TableIDTSDT:
		return "TSDT"
	case tableID == TableIDNITActual, tableID == TableIDNITOther:
		return "NIT"
	case tableID == TableIDSDTActual, tableID == TableIDSDTOther:
		return "SDT"
	case tableID == TableIDBAT:
		return "BAT"
	case isEITTableID(tableID):
		return "EIT"
	case tableID == TableIDTDT:
		return "TDT"
	case tableID == TableIDRST:
		return "RST"
	case tableID == TableIDST:
		return "ST"
	case tableID == TableIDTOT:
		return "TOT"
	case tableID == TableIDDIT:
		return "DIT"
	case tableID == TableIDSIT:
		return "SIT"
	case tableID == TableIDNull:
		return "Null"
	default:
		return "Unknown"
	}
}
