// Package buffer implements the buffer pool manager: a frame
// descriptor table (C1), a page-lookup hash index (C2), a frame pool
// (C3), a second-chance clock replacement policy (C4), and the
// Manager itself (C5), orchestrating all four against the narrow
// File/Page collaborator contract (C6).
package buffer

import (
	"fmt"
	"log/slog"

	"github.com/dbkit/bufferpool/internal/page"
)

const logDebugPrefix = "buffer: "

// Manager is the buffer pool's single entry point: readPage,
// allocPage, unPinPage, flushFile, disposePage (spec §4.4). It is not
// safe for concurrent use; see Concurrent for a mutex-guarded facade.
type Manager struct {
	pages       []*page.Page
	descriptors []*Descriptor
	index       *HashIndex
	clock       *clock
	log         *slog.Logger
}

// NewManager allocates a pool of numBufs page-sized frames, their
// descriptors (all initially empty), and a lookup index sized by
// HTSIZE(numBufs). The clock hand starts at numBufs-1.
func NewManager(numBufs int, pageSize int) *Manager {
	descriptors := make([]*Descriptor, numBufs)
	pages := make([]*page.Page, numBufs)
	for i := 0; i < numBufs; i++ {
		descriptors[i] = newDescriptor(FrameID(i))
		pages[i] = page.New(0, pageSize)
	}
	return &Manager{
		pages:       pages,
		descriptors: descriptors,
		index:       NewHashIndex(numBufs),
		clock:       newClock(descriptors),
		log:         slog.Default(),
	}
}

// NumBufs returns the fixed pool capacity.
func (m *Manager) NumBufs() int { return len(m.descriptors) }

// evict runs the writeback-and-unmap side effect for a chosen victim
// descriptor (spec §4.3 step 5): if dirty, write the page back via the
// frame's own file (not the requester's), then remove it from the
// lookup index and clear it. A descriptor that is already !valid has
// nothing to unmap.
func (m *Manager) evict(d *Descriptor) error {
	if !d.valid {
		return nil
	}
	if d.dirty {
		p := m.pages[d.frameNo]
		if err := d.file.WritePage(p); err != nil {
			return err
		}
		d.dirty = false
	}
	if err := m.index.Remove(d.file.Filename(), d.pageNo); err != nil {
		return err
	}
	d.Clear()
	return nil
}

// allocBuf selects a victim frame via the clock algorithm (C4),
// evicting it (writeback + unmap) as a side effect, and returns its
// frameId.
func (m *Manager) allocBuf() (FrameID, error) {
	return m.clock.selectVictim(m.evict)
}

// ReadPage returns a pinned borrow of the page (file, pageNo),
// fetching it from disk on a miss.
func (m *Manager) ReadPage(file File, pageNo int64) (*page.Page, error) {
	frameNo, err := m.index.Lookup(file.Filename(), pageNo)
	if err == nil {
		d := m.descriptors[frameNo]
		d.refbit = true
		d.pinCnt++
		m.log.Debug(logDebugPrefix+"readPage hit", "file", file.Filename(), "page", pageNo, "frame", frameNo)
		return m.pages[frameNo], nil
	}

	frameNo, err = m.allocBuf()
	if err != nil {
		return nil, err
	}

	p, err := file.ReadPage(pageNo)
	if err != nil {
		return nil, err
	}
	m.pages[frameNo] = p

	if err := m.index.Insert(file.Filename(), pageNo, frameNo); err != nil {
		return nil, err
	}
	m.descriptors[frameNo].Set(file, pageNo)
	m.log.Debug(logDebugPrefix+"readPage miss", "file", file.Filename(), "page", pageNo, "frame", frameNo)
	return p, nil
}

// AllocPage allocates a brand-new page in file, pins it, and returns
// its assigned page number together with a borrow. The victim frame
// is chosen before the new page is allocated (spec §4.4 note), so
// writeback of a dirty victim on the same file cannot race with the
// new allocation.
func (m *Manager) AllocPage(file File) (int64, *page.Page, error) {
	frameNo, err := m.allocBuf()
	if err != nil {
		return 0, nil, err
	}

	p, err := file.AllocatePage()
	if err != nil {
		return 0, nil, err
	}
	m.pages[frameNo] = p
	pageNo := p.PageNum()

	m.descriptors[frameNo].Set(file, pageNo)
	if err := m.index.Insert(file.Filename(), pageNo, frameNo); err != nil {
		return 0, nil, err
	}
	m.log.Debug(logDebugPrefix+"allocPage", "file", file.Filename(), "page", pageNo, "frame", frameNo)
	return pageNo, p, nil
}

// UnpinPage releases one pin on (file, pageNo). A miss is a silent
// no-op, per contract. dirtyHint, if true, marks the page dirty; it
// is never cleared by unpin.
func (m *Manager) UnpinPage(file File, pageNo int64, dirtyHint bool) error {
	frameNo, err := m.index.Lookup(file.Filename(), pageNo)
	if err != nil {
		return nil
	}
	d := m.descriptors[frameNo]
	if d.pinCnt == 0 {
		return &PageNotPinnedError{Owner: file.Filename(), PageNo: pageNo, FrameNo: frameNo}
	}
	if dirtyHint {
		d.dirty = true
	}
	d.pinCnt--
	return nil
}

// FlushFile scans every descriptor for one resident from file. Dirty
// matches are written back and unmapped; clean matches are simply
// unmapped. The scan aborts at the first pinned or invalid match it
// encounters, leaving frames already processed in their post-
// processing state.
func (m *Manager) FlushFile(file File) error {
	for _, d := range m.descriptors {
		if !sameFile(d.file, file) {
			continue
		}
		if !d.valid {
			return &BadBufferError{FrameNo: d.frameNo, Dirty: d.dirty, Valid: d.valid, RefBit: d.refbit}
		}
		if d.pinCnt > 0 {
			return &PagePinnedError{Owner: file.Filename(), PageNo: d.pageNo, FrameNo: d.frameNo}
		}
		if d.dirty {
			if err := d.file.WritePage(m.pages[d.frameNo]); err != nil {
				return err
			}
			d.dirty = false
		}
		if err := m.index.Remove(d.file.Filename(), d.pageNo); err != nil {
			return err
		}
		d.Clear()
	}
	m.log.Debug(logDebugPrefix+"flushFile", "file", file.Filename())
	return nil
}

// DisposePage unmaps (file, pageNo) from the pool if resident, then
// unconditionally deletes it from the file.
func (m *Manager) DisposePage(file File, pageNo int64) error {
	frameNo, err := m.index.Lookup(file.Filename(), pageNo)
	if err == nil {
		if rmErr := m.index.Remove(file.Filename(), pageNo); rmErr != nil {
			return rmErr
		}
		m.descriptors[frameNo].Clear()
	}
	return file.DeletePage(pageNo)
}

// FrameReport is one line of buffer pool diagnostics (spec §6.1
// supplement, originally BufMgr::printSelf): not part of the
// correctness contract.
type FrameReport struct {
	FrameNo FrameID
	Valid   bool
	File    string
	PageNo  int64
	PinCnt  int
	Dirty   bool
	RefBit  bool
}

// Describe returns one FrameReport per frame, in frame order.
func (m *Manager) Describe() []FrameReport {
	reports := make([]FrameReport, len(m.descriptors))
	for i, d := range m.descriptors {
		filename := ""
		if d.file != nil {
			filename = d.file.Filename()
		}
		reports[i] = FrameReport{
			FrameNo: d.frameNo,
			Valid:   d.valid,
			File:    filename,
			PageNo:  d.pageNo,
			PinCnt:  d.pinCnt,
			Dirty:   d.dirty,
			RefBit:  d.refbit,
		}
	}
	return reports
}

// String renders a one-line summary counting resident frames; use
// Describe for per-frame detail.
func (m *Manager) String() string {
	resident := 0
	for _, d := range m.descriptors {
		if d.valid {
			resident++
		}
	}
	return fmt.Sprintf("buffer.Manager{resident=%d/%d}", resident, len(m.descriptors))
}
