package tsdemux

import (
	"time"

	"github.com/pkg/errors"
)

// MaxTableVersions is the capacity of the per-table version rings. The 5-bit
// version space wraps at 32; eight in-flight versions per table id covers
// broadcast practice, and the completion dominance window disambiguates ring
// collisions across wraps.
const MaxTableVersions = 8

// completionDominanceWindow is the wall-clock gap beyond which a completion
// timestamp overrides version arithmetic when electing the current table. It
// keeps the view sane across version_number wraparound.
const completionDominanceWindow = 7200 * time.Second

// Table represents one version of a PSI/SI table, assembled from one or more
// sections. The payload field matching the table id is set; all others are nil.
type Table struct {
	CompletedAt   time.Time
	SectionHeader SectionHeader // head from the most recent section arrival
	TableID       uint8
	VersionNumber uint8

	hasSection []bool // per-section presence, indexed by section number

	BAT      *BATData
	CAT      *CATData
	DIT      *DITData
	EIT      *EITData
	Metadata []byte // raw bodies of user-private tables
	NIT      *NITData
	PAT      *PATData
	PMT      *PMTData
	RST      *RSTData
	SDT      *SDTData
	SIT      *SITData
	TDT      *TDTData
	TOT      *TOTData
	TSDT     *TSDTData
}

// newTable creates an empty table for the version the head announces.
func newTable(h SectionHeader) *Table {
	return &Table{
		SectionHeader: h,
		TableID:       h.TableID,
		VersionNumber: h.VersionNumber,
		hasSection:    make([]bool, int(h.LastSectionNumber)+1),
	}
}

// markSection flips the presence bit for the head's section number and reports
// whether it was already set.
func (t *Table) markSection(h SectionHeader) (alreadySeen bool) {
	if n := int(h.LastSectionNumber) + 1; n > len(t.hasSection) {
		grown := make([]bool, n)
		copy(grown, t.hasSection)
		t.hasSection = grown
	}
	if t.hasSection[h.SectionNumber] {
		return true
	}
	t.hasSection[h.SectionNumber] = true
	t.SectionHeader = h
	return false
}

// complete checks whether every section in [0, last_section_number] arrived.
func (t *Table) complete() bool {
	for _, ok := range t.hasSection {
		if !ok {
			return false
		}
	}
	return true
}

// parseSection decodes one section body into the payload variant selected by
// the table id and folds it into what previous sections already contributed.
func (t *Table) parseSection(h SectionHeader, body []byte) (err error) {
	var offset int
	end := len(body)
	switch {
	case t.TableID == TableIDPAT:
		var d *PATData
		if d, err = parsePATSection(body, &offset, end, h.TableIDExtension); err != nil {
			return errors.Wrap(err, "tsdemux: parsing PAT section failed")
		}
		if t.PAT == nil {
			t.PAT = d
		} else {
			t.PAT.merge(d)
		}
	case t.TableID == TableIDCAT:
		var d *CATData
		if d, err = parseCATSection(body, &offset, end); err != nil {
			return errors.Wrap(err, "tsdemux: parsing CAT section failed")
		}
		if t.CAT == nil {
			t.CAT = d
		} else {
			t.CAT.merge(d)
		}
	case t.TableID == TableIDPMT:
		var d *PMTData
		if d, err = parsePMTSection(body, &offset, end, h.TableIDExtension); err != nil {
			return errors.Wrap(err, "tsdemux: parsing PMT section failed")
		}
		if t.PMT == nil {
			t.PMT = d
		} else {
			t.PMT.merge(d)
		}
	case t.TableID == TableIDTSDT:
		var d *TSDTData
		if d, err = parseTSDTSection(body, &offset, end); err != nil {
			return errors.Wrap(err, "tsdemux: parsing TSDT section failed")
		}
		if t.TSDT == nil {
			t.TSDT = d
		} else {
			t.TSDT.merge(d)
		}
	case t.TableID == TableIDNITActual, t.TableID == TableIDNITOther:
		var d *NITData
		if d, err = parseNITSection(body, &offset, h.TableIDExtension); err != nil {
			return errors.Wrap(err, "tsdemux: parsing NIT section failed")
		}
		if t.NIT == nil {
			t.NIT = d
		} else {
			t.NIT.merge(d)
		}
	case t.TableID == TableIDBAT:
		var d *BATData
		if d, err = parseBATSection(body, &offset, h.TableIDExtension); err != nil {
			return errors.Wrap(err, "tsdemux: parsing BAT section failed")
		}
		if t.BAT == nil {
			t.BAT = d
		} else {
			t.BAT.merge(d)
		}
	case t.TableID == TableIDSDTActual, t.TableID == TableIDSDTOther:
		var d *SDTData
		if d, err = parseSDTSection(body, h.TableIDExtension); err != nil {
			return errors.Wrap(err, "tsdemux: parsing SDT section failed")
		}
		if t.SDT == nil {
			t.SDT = d
		} else {
			t.SDT.merge(d)
		}
	case isEITTableID(t.TableID):
		var d *EITData
		if d, err = parseEITSection(body, h.TableIDExtension); err != nil {
			return errors.Wrap(err, "tsdemux: parsing EIT section failed")
		}
		if t.EIT == nil {
			t.EIT = d
		} else {
			t.EIT.merge(d)
		}
	case t.TableID == TableIDTDT:
		if t.TDT, err = parseTDTSection(body); err != nil {
			return errors.Wrap(err, "tsdemux: parsing TDT section failed")
		}
	case t.TableID == TableIDTOT:
		if t.TOT, err = parseTOTSection(body); err != nil {
			return errors.Wrap(err, "tsdemux: parsing TOT section failed")
		}
	case t.TableID == TableIDRST:
		if t.RST, err = parseRSTSection(body, &offset, end); err != nil {
			return errors.Wrap(err, "tsdemux: parsing RST section failed")
		}
	case t.TableID == TableIDDIT:
		if t.DIT, err = parseDITSection(body, &offset, end); err != nil {
			return errors.Wrap(err, "tsdemux: parsing DIT section failed")
		}
	case t.TableID == TableIDSIT:
		var d *SITData
		if d, err = parseSITSection(body, &offset, end); err != nil {
			return errors.Wrap(err, "tsdemux: parsing SIT section failed")
		}
		if t.SIT == nil {
			t.SIT = d
		} else {
			t.SIT.merge(d)
		}
	default:
		// User-private and unlisted ids are preserved raw.
		t.Metadata = append(t.Metadata, body...)
	}
	return nil
}

// newerThan elects between two completed versions of the same table id: a
// completion more than the dominance window ahead wins outright, otherwise the
// higher version number does.
func (t *Table) newerThan(o *Table) bool {
	if t.CompletedAt.Sub(o.CompletedAt) > completionDominanceWindow {
		return true
	}
	if o.CompletedAt.Sub(t.CompletedAt) > completionDominanceWindow {
		return false
	}
	return t.VersionNumber > o.VersionNumber
}
