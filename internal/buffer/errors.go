package buffer

import "fmt"

// BufferExceededError is raised by allocBuf when the clock sweep finds
// every frame pinned in one full pass (spec §7).
type BufferExceededError struct{}

func (e *BufferExceededError) Error() string {
	return "bufferpool: buffer exceeded, all frames pinned"
}

// HashAlreadyPresentError is raised on a duplicate insert into the
// lookup index; it reports the frame the key is already mapped to.
type HashAlreadyPresentError struct {
	Filename string
	PageNo   int64
	FrameNo  FrameID
}

func (e *HashAlreadyPresentError) Error() string {
	return fmt.Sprintf("bufferpool: (%s, %d) already present in frame %d", e.Filename, e.PageNo, e.FrameNo)
}

// HashNotFoundError signals a lookup miss. Most callers (unPinPage,
// disposePage) treat it as a valid outcome and swallow it; readPage
// uses it to distinguish a hit from a miss.
type HashNotFoundError struct {
	Filename string
	PageNo   int64
}

func (e *HashNotFoundError) Error() string {
	return fmt.Sprintf("bufferpool: (%s, %d) not found", e.Filename, e.PageNo)
}

// PageNotPinnedError is raised by unPinPage when the target frame's
// pin count is already zero.
type PageNotPinnedError struct {
	Owner   string
	PageNo  int64
	FrameNo FrameID
}

func (e *PageNotPinnedError) Error() string {
	return fmt.Sprintf("bufferpool: unpin of unpinned page (%s, %d) in frame %d", e.Owner, e.PageNo, e.FrameNo)
}

// PagePinnedError is raised by flushFile when it encounters a frame
// belonging to the target file that still has outstanding pins.
type PagePinnedError struct {
	Owner   string
	PageNo  int64
	FrameNo FrameID
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("bufferpool: flush found pinned page (%s, %d) in frame %d", e.Owner, e.PageNo, e.FrameNo)
}

// BadBufferError is raised by flushFile when it encounters a
// descriptor whose (stale) file field matches the target file but
// whose valid flag is false — a lookup-index invariant violation.
type BadBufferError struct {
	FrameNo FrameID
	Dirty   bool
	Valid   bool
	RefBit  bool
}

func (e *BadBufferError) Error() string {
	return fmt.Sprintf("bufferpool: bad buffer in frame %d (dirty=%v valid=%v refbit=%v)", e.FrameNo, e.Dirty, e.Valid, e.RefBit)
}
