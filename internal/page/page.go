// Package page implements the fixed-size page collaborator (spec §6):
// an opaque, fixed-size byte container that supports record insertion,
// retrieval, and iteration. The on-disk layout is a slotted page, the
// same technique the reference storage layer uses: a header carrying
// low/high free-space pointers, a slot directory that grows from the
// low end, and record bytes packed in from the high end.
package page

import (
	"encoding/binary"
	"fmt"
)

// DefaultSize is used when a caller doesn't need a specific page size.
const DefaultSize = 4096

const (
	headerSize = 8 // lower(uint32) + upper(uint32)
	slotSize   = 8 // offset(uint32) + length(uint32); length==0 && offset==0 means deleted
)

// Page is a fixed-size, in-memory page of records.
//
// Layout:
//
//	[0:4)  lower  — byte offset just past the last slot entry
//	[4:8)  upper  — byte offset of the first record byte (records grow down)
//	[8:lower) slot directory, slotSize bytes each
//	[upper:size) record bytes
type Page struct {
	pageNo int64
	buf    []byte
}

// New creates a freshly initialized page of the given size for pageNo.
func New(pageNo int64, size int) *Page {
	p := &Page{pageNo: pageNo, buf: make([]byte, size)}
	p.reset()
	return p
}

// FromBytes wraps an existing, already-initialized buffer (e.g. one
// just read off disk) as a Page. The buffer is used directly, not
// copied.
func FromBytes(pageNo int64, buf []byte) *Page {
	return &Page{pageNo: pageNo, buf: buf}
}

func (p *Page) reset() {
	binary.BigEndian.PutUint32(p.buf[0:4], headerSize)
	binary.BigEndian.PutUint32(p.buf[4:8], uint32(len(p.buf)))
}

// PageNum returns the page number this page is (or will be) stored at.
func (p *Page) PageNum() int64 { return p.pageNo }

// Size returns the fixed size of the page in bytes.
func (p *Page) Size() int { return len(p.buf) }

// Bytes returns the raw backing buffer, for handing to the disk layer.
func (p *Page) Bytes() []byte { return p.buf }

func (p *Page) lower() int { return int(binary.BigEndian.Uint32(p.buf[0:4])) }
func (p *Page) upper() int { return int(binary.BigEndian.Uint32(p.buf[4:8])) }
func (p *Page) setLower(v int) { binary.BigEndian.PutUint32(p.buf[0:4], uint32(v)) }
func (p *Page) setUpper(v int) { binary.BigEndian.PutUint32(p.buf[4:8], uint32(v)) }

func (p *Page) slotOffset(i int) int { return headerSize + i*slotSize }

// NumSlots returns the number of slot entries, including deleted ones.
func (p *Page) NumSlots() int {
	return (p.lower() - headerSize) / slotSize
}

func (p *Page) getSlot(i int) (offset, length int) {
	o := p.slotOffset(i)
	return int(binary.BigEndian.Uint32(p.buf[o : o+4])),
		int(binary.BigEndian.Uint32(p.buf[o+4 : o+8]))
}

func (p *Page) putSlot(i, offset, length int) {
	o := p.slotOffset(i)
	binary.BigEndian.PutUint32(p.buf[o:o+4], uint32(offset))
	binary.BigEndian.PutUint32(p.buf[o+4:o+8], uint32(length))
}

// InsertRecord appends rec to the page and returns its slot number.
// It fails if there isn't enough free space between the slot
// directory and the record area.
func (p *Page) InsertRecord(rec []byte) (slot int, err error) {
	need := len(rec) + slotSize
	if p.upper()-p.lower() < need {
		return 0, fmt.Errorf("page %d: not enough free space for %d-byte record", p.pageNo, len(rec))
	}
	newUpper := p.upper() - len(rec)
	copy(p.buf[newUpper:], rec)
	p.setUpper(newUpper)

	slot = p.NumSlots()
	p.putSlot(slot, newUpper, len(rec))
	p.setLower(p.lower() + slotSize)
	return slot, nil
}

// GetRecord returns a copy of the record stored in slot, or an error
// if the slot is out of range or has been deleted.
func (p *Page) GetRecord(slot int) ([]byte, error) {
	if slot < 0 || slot >= p.NumSlots() {
		return nil, fmt.Errorf("page %d: slot %d out of range", p.pageNo, slot)
	}
	offset, length := p.getSlot(slot)
	if length == 0 {
		return nil, fmt.Errorf("page %d: slot %d is deleted", p.pageNo, slot)
	}
	out := make([]byte, length)
	copy(out, p.buf[offset:offset+length])
	return out, nil
}

// DeleteRecord tombstones a slot; the bytes remain in the page but are
// no longer reachable via GetRecord or Iterate.
func (p *Page) DeleteRecord(slot int) error {
	if slot < 0 || slot >= p.NumSlots() {
		return fmt.Errorf("page %d: slot %d out of range", p.pageNo, slot)
	}
	p.putSlot(slot, 0, 0)
	return nil
}

// Iterate calls fn for every live (non-deleted) record on the page, in
// slot order. Iteration stops early if fn returns false.
func (p *Page) Iterate(fn func(slot int, rec []byte) bool) {
	for i := 0; i < p.NumSlots(); i++ {
		offset, length := p.getSlot(i)
		if length == 0 {
			continue
		}
		if !fn(i, p.buf[offset:offset+length]) {
			return
		}
	}
}
