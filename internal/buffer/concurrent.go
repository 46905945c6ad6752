package buffer

import (
	"sync"

	"github.com/dbkit/bufferpool/internal/page"
)

// Concurrent wraps a Manager in a single mutex, the coarse option
// spec §5 sanctions for callers that need concurrent access without
// redesigning the core around per-frame latches. It exposes the
// identical method set as Manager, nothing more.
type Concurrent struct {
	mu sync.Mutex
	m  *Manager
}

// NewConcurrent wraps an existing Manager for concurrent use. The
// caller must not use m directly afterward.
func NewConcurrent(m *Manager) *Concurrent {
	return &Concurrent{m: m}
}

func (c *Concurrent) NumBufs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.NumBufs()
}

func (c *Concurrent) ReadPage(file File, pageNo int64) (*page.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.ReadPage(file, pageNo)
}

func (c *Concurrent) AllocPage(file File) (int64, *page.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.AllocPage(file)
}

func (c *Concurrent) UnpinPage(file File, pageNo int64, dirtyHint bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.UnpinPage(file, pageNo, dirtyHint)
}

func (c *Concurrent) FlushFile(file File) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.FlushFile(file)
}

func (c *Concurrent) DisposePage(file File, pageNo int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.DisposePage(file, pageNo)
}

func (c *Concurrent) Describe() []FrameReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Describe()
}

func (c *Concurrent) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.String()
}
