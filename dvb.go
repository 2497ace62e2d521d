package tsdemux

import (
	"time"

	"github.com/icza/bitio"
)

// parseDVBTime parses a DVB time
// This field is coded as 16 bits giving the 16 LSBs of MJD
// followed by 24 bits coded as 6 digits in 4-bit Binary
// Coded Decimal (BCD). If the start time is undefined
// (e.g. for an event in a NVOD reference service)
// all bits of the field are set to "1".
//
// Page: 160 | Annex C | Link:
// https://www.dvb.org/resources/public/standards/a38_dvb-si_specification.pdf
func parseDVBTime(r *bitio.CountReader) (time.Time, error) {
	mjd := uint16(r.TryReadBits(16))

	// Undefined start time
	if mjd == 0xffff {
		r.TryReadBits(24)
		return time.Time{}, r.TryError
	}

	yt := int((float64(mjd) - 15078.2) / 365.25)
	mt := int((float64(mjd) - 14956.1 - float64(int(float64(yt)*365.25))) / 30.6001)
	d := int(mjd) - 14956 - int(float64(yt)*365.25) - int(float64(mt)*30.6001)
	var k int
	if mt == 14 || mt == 15 {
		k = 1
	}
	y := yt + k + 1900
	m := mt - 1 - k*12

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)

	s, err := parseDVBDurationSeconds(r)
	if err != nil {
		return time.Time{}, err
	}

	return t.Add(s), r.TryError
}

// parseDVBDurationMinutes parses a minutes duration.
// 16 bit field containing the duration of the event in
// hours, minutes. format: 4 digits, 4-bit BCD = 16 bit.
func parseDVBDurationMinutes(r *bitio.CountReader) (time.Duration, error) {
	d := parseDVBDurationByte(r.TryReadByte())*time.Hour + //nolint:durationcheck
		parseDVBDurationByte(r.TryReadByte())*time.Minute //nolint:durationcheck

	return d, r.TryError
}

// parseDVBDurationSeconds parses a seconds duration.
// 24 bit field containing the duration of the event in hours,
// minutes, seconds. format: 6 digits, 4-bit BCD = 24 bit.
func parseDVBDurationSeconds(r *bitio.CountReader) (time.Duration, error) {
	d := parseDVBDurationByte(r.TryReadByte())*time.Hour + //nolint:durationcheck
		parseDVBDurationByte(r.TryReadByte())*time.Minute + //nolint:durationcheck
		parseDVBDurationByte(r.TryReadByte())*time.Second //nolint:durationcheck

	return d, r.TryError
}

// parseDVBDurationByte parses a duration byte.
func parseDVBDurationByte(i byte) time.Duration {
	return time.Duration(i>>4*10 + i&0xf)
}
