package tsdemux

import (
	"time"

	"github.com/pkg/errors"
)

// tableVersions tracks the in-flight and completed versions of one table id.
// Both rings are indexed by version_number % MaxTableVersions; a new arrival
// in a slot evicts whatever older version occupied it.
type tableVersions struct {
	current *Table
	parsed  [MaxTableVersions]*Table
	partial [MaxTableVersions]*Table
}

// tableAggregator assembles completed sections into versioned tables and
// elects the current version per table id.
type tableAggregator struct {
	now         func() time.Time
	tables      map[uint8]*tableVersions
	verifyCRC32 bool
}

func newTableAggregator(verifyCRC32 bool) *tableAggregator {
	return &tableAggregator{
		now:         time.Now,
		tables:      make(map[uint8]*tableVersions),
		verifyCRC32: verifyCRC32,
	}
}

// handleSection folds one completed section into its version's table. When the
// version completes and wins the election it returns the promoted table along
// with the previously current one; otherwise both are nil.
func (a *tableAggregator) handleSection(s completedSection) (promoted, previous *Table, err error) {
	h := s.header

	// Sections carrying the next version are ignored until they are
	// retransmitted with current_next_indicator set.
	if !h.CurrentNextIndicator {
		return
	}

	// Optional CRC check. Corrupt sections are dropped, not fatal.
	if a.verifyCRC32 && hasCRC32(h.TableID) {
		if len(s.raw) < h.headerSize()+sectionCRC32Size {
			err = errors.Errorf("tsdemux: section of table %s too short for a CRC32", TableTypeString(h.TableID))
			return
		}
		payload := s.raw[:len(s.raw)-sectionCRC32Size]
		trailer := s.raw[len(s.raw)-sectionCRC32Size:]
		stored := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 | uint32(trailer[2])<<8 | uint32(trailer[3])
		if computed := computeCRC32(payload); computed != stored {
			logger.Warnf("tsdemux: dropping %s section %d: CRC32 mismatch (stored 0x%08x, computed 0x%08x)", TableTypeString(h.TableID), h.SectionNumber, stored, computed)
			return
		}
	}

	tv, ok := a.tables[h.TableID]
	if !ok {
		tv = &tableVersions{}
		a.tables[h.TableID] = tv
	}
	slot := h.VersionNumber % MaxTableVersions

	// A version that already completed absorbs retransmissions silently.
	if p := tv.parsed[slot]; p != nil && p.VersionNumber == h.VersionNumber {
		return
	}

	t := tv.partial[slot]
	if t != nil && t.VersionNumber != h.VersionNumber {
		// The slot wrapped to a different version: the stale partial is
		// gone for good.
		logger.Debugf("tsdemux: discarding incomplete version %d of table %s for version %d", t.VersionNumber, TableTypeString(h.TableID), h.VersionNumber)
		t = nil
	}
	if t == nil {
		t = newTable(h)
		tv.partial[slot] = t
	}

	// A section number seen before contributes nothing new.
	if t.markSection(h) {
		return
	}

	body := s.raw[h.headerSize():]
	if hasCRC32(h.TableID) {
		if len(body) < sectionCRC32Size {
			err = errors.Errorf("tsdemux: section of table %s too short for a CRC32", TableTypeString(h.TableID))
			return
		}
		body = body[:len(body)-sectionCRC32Size]
	}
	if err = t.parseSection(h, body); err != nil {
		err = errors.Wrapf(err, "tsdemux: parsing section %d of table %s failed", h.SectionNumber, TableTypeString(h.TableID))
		return
	}

	if !t.complete() {
		return
	}

	// The version is complete: move it to the parsed ring and re-elect.
	t.CompletedAt = a.now()
	tv.partial[slot] = nil
	tv.parsed[slot] = t
	if latest := tv.latest(); latest != tv.current {
		previous = tv.current
		tv.current = latest
		promoted = latest
	}
	return
}

// latest returns the winner of the election across completed versions.
func (tv *tableVersions) latest() (best *Table) {
	for _, t := range tv.parsed {
		if t == nil {
			continue
		}
		if best == nil || t.newerThan(best) {
			best = t
		}
	}
	return
}

// table returns the current version of a table id, or nil when none completed.
func (a *tableAggregator) table(tableID uint8) *Table {
	tv, ok := a.tables[tableID]
	if !ok {
		return nil
	}
	return tv.current
}
