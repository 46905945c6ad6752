package buffer

import "fmt"

// Descriptor is the per-frame metadata record (spec §3/§4.1). frameNo
// is set once, at construction, and never changes. The remaining
// fields describe the residency state of whatever page currently
// occupies the frame.
//
// Invariant: valid == false implies pinCnt == 0, dirty == false and
// refbit == false.
type Descriptor struct {
	frameNo FrameID
	file    File
	pageNo  int64
	pinCnt  int
	dirty   bool
	valid   bool
	refbit  bool
}

func newDescriptor(frameNo FrameID) *Descriptor {
	return &Descriptor{frameNo: frameNo, valid: false}
}

// Set installs a freshly-resident page: pinCnt=1, dirty=false,
// valid=true, refbit=false. Used when allocPage/readPage populates a
// frame for the first time.
func (d *Descriptor) Set(file File, pageNo int64) {
	d.file = file
	d.pageNo = pageNo
	d.pinCnt = 1
	d.dirty = false
	d.valid = true
	d.refbit = false
}

// Clear resets the descriptor to the empty state.
func (d *Descriptor) Clear() {
	d.file = nil
	d.pageNo = 0
	d.pinCnt = 0
	d.dirty = false
	d.valid = false
	d.refbit = false
}

// FrameNo returns the immutable frame index this descriptor describes.
func (d *Descriptor) FrameNo() FrameID { return d.frameNo }

// Valid reports whether the frame currently holds a resident page.
func (d *Descriptor) Valid() bool { return d.valid }

// PinCount returns the current pin count.
func (d *Descriptor) PinCount() int { return d.pinCnt }

// Dirty reports whether the resident page has unflushed modifications.
func (d *Descriptor) Dirty() bool { return d.dirty }

// RefBit reports the clock-algorithm reference bit.
func (d *Descriptor) RefBit() bool { return d.refbit }

// File returns the file of the resident page (undefined when !Valid()).
func (d *Descriptor) File() File { return d.file }

// PageNo returns the page number of the resident page (undefined when !Valid()).
func (d *Descriptor) PageNo() int64 { return d.pageNo }

// String renders the descriptor for diagnostics only; it is not part
// of the correctness contract (spec §4.1).
func (d *Descriptor) String() string {
	filename := "<none>"
	if d.file != nil {
		filename = d.file.Filename()
	}
	return fmt.Sprintf("frame=%d file=%s page=%d pin=%d dirty=%v valid=%v ref=%v",
		d.frameNo, filename, d.pageNo, d.pinCnt, d.dirty, d.valid, d.refbit)
}
