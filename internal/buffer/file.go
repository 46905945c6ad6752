package buffer

import "github.com/dbkit/bufferpool/internal/page"

// FrameID indexes a slot in the frame pool, in [0, numBufs).
type FrameID int

// File is the narrow contract the core requires of the on-disk file
// abstraction (spec §6). Equality between two File handles is defined
// by Filename(), not by pointer identity.
type File interface {
	Filename() string
	AllocatePage() (*page.Page, error)
	ReadPage(pageNo int64) (*page.Page, error)
	WritePage(p *page.Page) error
	DeletePage(pageNo int64) error
}

func sameFile(a, b File) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Filename() == b.Filename()
}
