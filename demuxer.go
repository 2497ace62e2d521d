package tsdemux

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Sync byte
const syncByte = '\x47'

// Errors
var (
	ErrInvalidPacketLength          = errors.New("tsdemux: invalid packet length")
	ErrNoSyncByte                   = errors.New("tsdemux: no sync byte found")
	ErrPacketMustStartWithASyncByte = errors.New("tsdemux: packet must start with a sync byte")
	ErrPacketSizeUndetected         = errors.New("tsdemux: packet size could not be detected")
	ErrSectionLengthTooLarge        = errors.New("tsdemux: section length is too large")
	ErrUnknownPIDPacket             = errors.New("tsdemux: packet on an unknown PID")
)

// Well-known PIDs.
// Page: 37 | Link: https://www.iso.org/standard/75928.html (ISO/IEC 13818-1)
// Page: 25 | Link: https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
const (
	PIDPAT  uint16 = 0x0    // Program Association Table (PAT)
	PIDCAT  uint16 = 0x1    // Conditional Access Table (CAT)
	PIDTSDT uint16 = 0x2    // Transport Stream Description Table (TSDT)
	PIDNIT  uint16 = 0x10   // Network Information Table (NIT)
	PIDSDT  uint16 = 0x11   // Service Description Table (SDT) / BAT
	PIDEIT  uint16 = 0x12   // Event Information Table (EIT)
	PIDRST  uint16 = 0x13   // Running Status Table (RST)
	PIDTDT  uint16 = 0x14   // Time and Date Table (TDT) / TOT
	PIDNull uint16 = 0x1fff // Null packets
)

// Bounds of the dynamically assignable PID range.
const (
	pidCustomFirst uint16 = 0x0020
	pidCustomLast  uint16 = 0x1ffe
)

// Demuxer demultiplexes an MPEG transport stream into PSI/SI tables. Input is
// pushed through AddPacket, AddBuffer or AddFile; the current view of each
// table is read back with GetTable. A Demuxer is not safe for concurrent use.
// https://en.wikipedia.org/wiki/MPEG_transport_stream
// http://www.etsi.org/deliver/etsi_en/300400_300499/300468/01.13.01_40/en_300468v011301o.pdf
type Demuxer struct {
	aggregator       *tableAggregator
	continuityErrors uint64
	ctx              context.Context
	filters          map[uint16]*filterContext
	ignoredPackets   uint64
	iterator         *NoAllocBytesIterator
	optPacketSize    int
	optStorePackets  bool
	optVerifyCRC32   bool
	packets          []*Packet
}

// New creates a new demuxer with section filters pre-registered on the
// well-known PSI/SI PIDs.
func New(ctx context.Context, opts ...func(*Demuxer)) (d *Demuxer) {
	// Init
	d = &Demuxer{
		ctx:      ctx,
		filters:  make(map[uint16]*filterContext),
		iterator: NewNoAllocBytesIterator(nil),
	}

	// Apply options
	for _, opt := range opts {
		opt(d)
	}

	d.aggregator = newTableAggregator(d.optVerifyCRC32)
	for _, pid := range []uint16{PIDPAT, PIDCAT, PIDTSDT, PIDNIT, PIDSDT, PIDEIT, PIDRST, PIDTDT} {
		d.filters[pid] = newFilterContext(pid, filterTypeSection)
	}
	return
}

// OptPacketSize returns the option to set the packet size, skipping detection
// in AddBuffer.
func OptPacketSize(packetSize int) func(*Demuxer) {
	return func(d *Demuxer) {
		d.optPacketSize = packetSize
	}
}

// OptStorePackets returns the option to keep every parsed packet, retrievable
// with Packets.
func OptStorePackets() func(*Demuxer) {
	return func(d *Demuxer) {
		d.optStorePackets = true
	}
}

// OptVerifyCRC32 returns the option to verify section CRCs, dropping corrupt
// sections.
func OptVerifyCRC32() func(*Demuxer) {
	return func(d *Demuxer) {
		d.optVerifyCRC32 = true
	}
}

// AddPacket parses one 188-byte packet and routes it to its PID filter. Null
// packets are accepted and dropped. Packets on custom-range PIDs without a
// registered filter are counted as ignored; on any other PID they fail with
// ErrUnknownPIDPacket.
func (dmx *Demuxer) AddPacket(bs []byte) (err error) {
	// Check ctx error
	if err = dmx.ctx.Err(); err != nil {
		return
	}

	if len(bs) != MpegTsPacketSize188 {
		return ErrInvalidPacketLength
	}

	// Parse the packet
	dmx.iterator.Reset(bs)
	var p *Packet
	if p, err = parsePacket(dmx.iterator); err != nil {
		err = errors.Wrap(err, "tsdemux: parsing packet failed")
		return
	}
	if dmx.optStorePackets {
		dmx.packets = append(dmx.packets, p)
	}

	// Route it
	pid := p.Header.PID
	if pid == PIDNull {
		return
	}
	f, ok := dmx.filters[pid]
	if !ok {
		if pid >= pidCustomFirst && pid <= pidCustomLast {
			dmx.ignoredPackets++
			return
		}
		return ErrUnknownPIDPacket
	}

	ss, _, continuityError, err := f.add(p)
	if err != nil {
		err = errors.Wrapf(err, "tsdemux: adding packet to filter of pid %d failed", pid)
		return
	}
	if continuityError {
		dmx.continuityErrors++
	}
	for _, s := range ss {
		if err = dmx.handleSection(s); err != nil {
			return
		}
	}
	return
}

// handleSection feeds one completed section to the aggregator and applies the
// filter fan-out when a table is promoted.
func (dmx *Demuxer) handleSection(s completedSection) (err error) {
	promoted, previous, err := dmx.aggregator.handleSection(s)
	if err != nil {
		err = errors.Wrap(err, "tsdemux: aggregating section failed")
		return
	}
	if promoted != nil {
		dmx.applyPromotion(promoted, previous)
	}
	return
}

// applyPromotion updates the filter set when a new PAT or PMT becomes current:
// filters on dropped PIDs are destroyed, filters on announced PIDs created or
// replaced. Well-known PIDs keep their permanent filters.
func (dmx *Demuxer) applyPromotion(promoted, previous *Table) {
	var pids map[uint16]struct{}
	var previousPIDs map[uint16]struct{}
	var typ int
	switch {
	case promoted.PAT != nil:
		pids = promoted.PAT.pids()
		if previous != nil && previous.PAT != nil {
			previousPIDs = previous.PAT.pids()
		}
		typ = filterTypeSection
	case promoted.PMT != nil:
		pids = promoted.PMT.pids()
		if previous != nil && previous.PMT != nil {
			previousPIDs = previous.PMT.pids()
		}
		typ = filterTypePES
	default:
		return
	}

	for pid := range previousPIDs {
		if _, ok := pids[pid]; !ok && pid >= pidCustomFirst {
			delete(dmx.filters, pid)
		}
	}
	for pid := range pids {
		if pid < pidCustomFirst {
			continue
		}
		dmx.filters[pid] = newFilterContext(pid, typ)
	}
}

// AddBuffer detects the packet stride of a buffer, walks it aligning on the
// sync byte, adds every packet and flushes the filters at the end to drain
// trailing partial input.
func (dmx *Demuxer) AddBuffer(bs []byte) (err error) {
	packetSize := dmx.optPacketSize
	if packetSize == 0 {
		if packetSize, err = DetectPacketSize(bs); err != nil {
			err = errors.Wrap(err, "tsdemux: detecting packet size failed")
			return
		}
	}

	for offset := 0; offset+MpegTsPacketSize188 <= len(bs); {
		if bs[offset] != syncByte {
			// Realign on the next sync byte
			offset++
			continue
		}
		if err = dmx.AddPacket(bs[offset : offset+MpegTsPacketSize188]); err != nil {
			err = errors.Wrapf(err, "tsdemux: adding packet at offset %d failed", offset)
			return
		}
		offset += packetSize
	}

	dmx.Flush()
	return
}

// AddFile reads a whole file and adds it as a buffer.
func (dmx *Demuxer) AddFile(path string) (err error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "tsdemux: reading %s failed", path)
		return
	}
	if err = dmx.AddBuffer(bs); err != nil {
		err = errors.Wrapf(err, "tsdemux: adding buffer of %s failed", path)
		return
	}
	return
}

// Flush resets the reassembly state of every filter. Incomplete sections are
// discarded; pending unbounded PES units are dropped. Filters are visited in
// PID order so logging is deterministic.
func (dmx *Demuxer) Flush() {
	pids := make([]uint16, 0, len(dmx.filters))
	for pid := range dmx.filters {
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	for _, pid := range pids {
		dmx.filters[pid].flush()
	}
}

// GetTable returns the current version of a table id, or nil when no version
// has completed yet. The result is valid until the next Add* call promotes a
// newer version.
func (dmx *Demuxer) GetTable(tableID uint8) *Table {
	return dmx.aggregator.table(tableID)
}

// Tables returns the current version of every aggregated table, ordered by
// table id.
func (dmx *Demuxer) Tables() (ts []*Table) {
	ids := make([]uint8, 0, len(dmx.aggregator.tables))
	for id := range dmx.aggregator.tables {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if t := dmx.aggregator.table(id); t != nil {
			ts = append(ts, t)
		}
	}
	return
}

// Packets returns the packets parsed so far. Empty unless OptStorePackets was
// set.
func (dmx *Demuxer) Packets() []*Packet {
	return dmx.packets
}

// IgnoredPackets returns the number of packets dropped for lacking a filter on
// a custom-range PID. Null packets are not counted.
func (dmx *Demuxer) IgnoredPackets() uint64 {
	return dmx.ignoredPackets
}

// ContinuityErrors returns the number of continuity counter discrepancies
// observed across all PIDs.
func (dmx *Demuxer) ContinuityErrors() uint64 {
	return dmx.continuityErrors
}

// HasContinuityError reports whether a PID's continuity counter ever jumped.
func (dmx *Demuxer) HasContinuityError() bool {
	return dmx.continuityErrors > 0
}
