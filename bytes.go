package tsdemux

import "fmt"

// NoAllocBytesIterator walks a byte slice with bounds-checked cursor helpers.
// Unlike the astikit BytesIterator it can be pointed at a new slice with Reset,
// so the AddPacket hot path reuses one iterator for the whole stream instead of
// allocating one per TS packet.
type NoAllocBytesIterator struct {
	bs     []byte
	offset int
}

// NewNoAllocBytesIterator creates an iterator positioned at the start of bs.
func NewNoAllocBytesIterator(bs []byte) *NoAllocBytesIterator {
	return &NoAllocBytesIterator{bs: bs}
}

// Reset points the iterator at a new slice and rewinds it.
func (i *NoAllocBytesIterator) Reset(bs []byte) {
	i.bs = bs
	i.offset = 0
}

// NextByte advances past one byte and returns it.
func (i *NoAllocBytesIterator) NextByte() (b byte, err error) {
	if len(i.bs) < i.offset+1 {
		err = fmt.Errorf("tsdemux: slice length is %d, offset %d is invalid", len(i.bs), i.offset)
		return
	}
	b = i.bs[i.offset]
	i.offset++
	return
}

// NextBytes advances past n bytes and returns a copy of them.
func (i *NoAllocBytesIterator) NextBytes(n int) (bs []byte, err error) {
	if len(i.bs) < i.offset+n {
		err = fmt.Errorf("tsdemux: slice length is %d, offset %d is invalid", len(i.bs), i.offset+n)
		return
	}
	bs = make([]byte, n)
	copy(bs, i.bs[i.offset:i.offset+n])
	i.offset += n
	return
}

// NextBytesNoCopy advances past n bytes and returns them aliased into the
// underlying slice. The result is only valid until the caller's slice changes;
// use NextBytes when the bytes must be modified or outlive the input.
func (i *NoAllocBytesIterator) NextBytesNoCopy(n int) (bs []byte, err error) {
	if len(i.bs) < i.offset+n {
		err = fmt.Errorf("tsdemux: slice length is %d, offset %d is invalid", len(i.bs), i.offset+n)
		return
	}
	bs = i.bs[i.offset : i.offset+n]
	i.offset += n
	return
}

// Seek moves the cursor to an absolute offset.
func (i *NoAllocBytesIterator) Seek(n int) {
	i.offset = n
}

// Skip moves the cursor relatively, forwards or backwards.
func (i *NoAllocBytesIterator) Skip(n int) {
	i.offset += n
}

// HasBytesLeft reports whether the cursor is before the end of the slice.
func (i *NoAllocBytesIterator) HasBytesLeft() bool {
	return i.offset < len(i.bs)
}

// Offset returns the cursor position.
func (i *NoAllocBytesIterator) Offset() int {
	return i.offset
}

// Dump returns a copy of everything after the cursor and exhausts the
// iterator.
func (i *NoAllocBytesIterator) Dump() (bs []byte) {
	if !i.HasBytesLeft() {
		return
	}
	bs = make([]byte, len(i.bs)-i.offset)
	copy(bs, i.bs[i.offset:len(i.bs)])
	i.offset = len(i.bs)
	return
}

// Len returns the length of the underlying slice.
func (i *NoAllocBytesIterator) Len() int {
	return len(i.bs)
}
