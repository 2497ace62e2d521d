package tsdemux

import (
	"github.com/pkg/errors"
)

// Filter types
const (
	filterTypeSection = iota
	filterTypePES
	filterTypeNull
)

// completedSection carries one fully reassembled section: the parsed head and
// the raw bytes from table_id up to and including the CRC when there is one.
type completedSection struct {
	header SectionHeader
	raw    []byte
}

// filterContext holds the per-PID reassembly state: an accumulator growing
// geometrically from one packet worth of payload, the continuity tracking and
// the head of the section or PES unit currently being collected.
type filterContext struct {
	pid                 uint16
	typ                 int
	buf                 []byte
	started             bool // a payload unit start has been seen
	hasHead             bool
	sectionHeader       SectionHeader
	pesHeader           PESHeader
	expectedPayloadSize int // -1 when unbounded (PES with packet_length 0)

	lastContinuityCounter uint8
	hasContinuityCounter  bool
	continuityError       bool

	pesDropLogged bool
}

// newFilterContext creates a filter context for one PID.
func newFilterContext(pid uint16, typ int) *filterContext {
	return &filterContext{
		pid: pid,
		typ: typ,
		buf: make([]byte, 0, startingBufferLength),
	}
}

// add feeds one packet into the context and returns the sections it completed.
// duplicate reports whether the packet was a legal repeat of the previous one,
// continuityError whether the continuity counter jumped. Data keeps being
// appended on a continuity error; broadcast streams ship occasional gaps and
// downstream tables survive them.
func (f *filterContext) add(p *Packet) (ss []completedSection, duplicate, continuityError bool, err error) {
	if !p.Header.HasPayload {
		return
	}

	// Continuity policy: +1 mod 16 on every payload-carrying packet, same value
	// is a legal duplicate, a signalled discontinuity resets the expectation.
	if f.hasContinuityCounter {
		switch {
		case p.Header.ContinuityCounter == f.lastContinuityCounter:
			duplicate = true
			return
		case p.Header.ContinuityCounter != (f.lastContinuityCounter+1)%16:
			if p.AdaptationField == nil || !p.AdaptationField.DiscontinuityIndicator {
				continuityError = true
				f.continuityError = true
				logger.Warnf("tsdemux: pid %d: continuity counter %d follows %d", f.pid, p.Header.ContinuityCounter, f.lastContinuityCounter)
			}
		}
	}
	f.lastContinuityCounter = p.Header.ContinuityCounter
	f.hasContinuityCounter = true

	payload := p.Payload
	if p.Header.PayloadUnitStartIndicator && f.typ == filterTypeSection {
		// Pointer field: the first bytes of the payload are the tail of the
		// previous section.
		if len(payload) == 0 {
			err = errors.Errorf("tsdemux: pid %d: payload unit start without pointer field", f.pid)
			return
		}
		pointerField := int(payload[0])
		if pointerField > len(payload)-1 {
			err = errors.Errorf("tsdemux: pid %d: pointer field %d exceeds payload size %d", f.pid, pointerField, len(payload)-1)
			return
		}
		if f.started {
			f.buf = append(f.buf, payload[1:1+pointerField]...)
			if ss, err = f.drain(); err != nil {
				return
			}
		}

		// Whatever didn't complete a section before the new start is stuffing
		// or a casualty of packet loss.
		f.buf = f.buf[:0]
		f.hasHead = false
		f.started = true
		f.buf = append(f.buf, payload[1+pointerField:]...)
	} else if p.Header.PayloadUnitStartIndicator {
		// PES payloads have no pointer field; a new unit starts right away and
		// whatever was pending is dropped.
		f.flushPES()
		f.buf = f.buf[:0]
		f.hasHead = false
		f.started = true
		f.buf = append(f.buf, payload...)
	} else {
		if !f.started {
			return
		}
		f.buf = append(f.buf, payload...)
	}

	var more []completedSection
	if more, err = f.drain(); err != nil {
		return
	}
	ss = append(ss, more...)
	return
}

// drain parses heads and emits sections for as long as the accumulator holds
// complete units.
func (f *filterContext) drain() (ss []completedSection, err error) {
	for {
		if !f.hasHead {
			if len(f.buf) == 0 {
				return
			}
			if f.typ == filterTypePES {
				if !f.parsePESHead() {
					return
				}
				continue
			}

			// 0xff right after a section means the remainder of the payload is
			// stuffing.
			if f.buf[0] == TableIDNull {
				f.buf = f.buf[:0]
				f.started = false
				return
			}

			// The head itself may span packets.
			if len(f.buf) < sectionShortHeaderSize || len(f.buf) < sectionHeaderSize(f.buf) {
				return
			}
			var h SectionHeader
			if h, err = parseSectionHeader(f.buf); err != nil {
				err = errors.Wrapf(err, "tsdemux: pid %d: parsing section header failed", f.pid)
				return
			}
			f.sectionHeader = h
			f.expectedPayloadSize = h.expectedPayloadSize()
			f.hasHead = true
		}

		if f.typ == filterTypePES {
			if f.expectedPayloadSize < 0 {
				// Unbounded; flushed on the next payload unit start.
				return
			}
			total := pesHeaderSize + f.expectedPayloadSize
			if len(f.buf) < total {
				return
			}
			f.dropPES(total)
			continue
		}

		total := f.sectionHeader.headerSize() + f.expectedPayloadSize
		if len(f.buf) < total {
			return
		}
		raw := make([]byte, total)
		copy(raw, f.buf)
		ss = append(ss, completedSection{header: f.sectionHeader, raw: raw})

		// Shift the remainder to the front; the buffer is reused for the life
		// of the context.
		f.buf = f.buf[:copy(f.buf, f.buf[total:])]
		f.hasHead = false
	}
}

// parsePESHead decodes the 6-byte PES head at the front of the accumulator.
// Returns false when more bytes are needed or the buffer was discarded.
func (f *filterContext) parsePESHead() bool {
	if len(f.buf) < pesHeaderSize {
		return false
	}
	h, err := parsePESHeader(f.buf)
	if err != nil {
		logger.Debugf("tsdemux: pid %d: %s, discarding %d bytes", f.pid, err, len(f.buf))
		f.buf = f.buf[:0]
		f.started = false
		return false
	}
	f.pesHeader = h
	if h.PacketLength == 0 {
		f.expectedPayloadSize = -1
	} else {
		f.expectedPayloadSize = int(h.PacketLength)
	}
	f.hasHead = true
	return true
}

// dropPES discards n bytes of completed PES unit. PES reassembly stops at the
// head: payloads aren't dispatched anywhere yet.
func (f *filterContext) dropPES(n int) {
	if !f.pesDropLogged {
		logger.Debugf("tsdemux: pid %d: PES payload reassembly is not implemented, dropping stream id 0x%x", f.pid, f.pesHeader.StreamID)
		f.pesDropLogged = true
	}
	f.buf = f.buf[:copy(f.buf, f.buf[n:])]
	f.hasHead = false
}

// flushPES drops a pending unbounded PES unit.
func (f *filterContext) flushPES() {
	if f.typ == filterTypePES && f.hasHead && f.expectedPayloadSize < 0 && len(f.buf) > 0 {
		f.dropPES(len(f.buf))
	}
}

// flush drains whatever the context can still dispatch at the end of a buffer
// and resets the reassembly state. Incomplete sections cannot be dispatched;
// unbounded PES units are dropped through the usual path.
func (f *filterContext) flush() {
	f.flushPES()
	f.buf = f.buf[:0]
	f.hasHead = false
	f.started = false
}
