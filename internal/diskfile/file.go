// Package diskfile provides a disk-backed implementation of the File
// collaborator the buffer pool core requires (spec §6): filename
// identity, page allocation, page read/write, and page deletion.
//
// It plays the same role the reference storage layer's Pager/
// StorageManager pair does (seek to pageNo*pageSize, read/write a
// fixed-size slice) but is built on an afero.Fs so it can run against
// either a real OS filesystem or an in-memory one in tests.
package diskfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/dbkit/bufferpool/internal/page"
)

// ErrInvalidPage is returned by ReadPage when pageNo does not name a
// page that has been allocated in the file.
var ErrInvalidPage = errors.New("diskfile: invalid page number")

// ErrFileNotFound is returned by Open when the underlying path does
// not exist.
var ErrFileNotFound = errors.New("diskfile: file not found")

// File is a fixed-page-size data file addressed by page number.
type File struct {
	fs       afero.Fs
	path     string
	pageSize int

	mu        sync.Mutex
	f         afero.File
	numPages  int64
	freePages map[int64]struct{}
}

// Open opens the existing data file at path on fs, using pageSize as
// the fixed page size; it fails with ErrFileNotFound if path does not
// exist. path is also the file's stable identity for
// equality and hashing purposes.
func Open(fs afero.Fs, path string, pageSize int) (*File, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("diskfile: stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return openOrCreate(fs, path, pageSize)
}

// Create opens the data file at path, creating it empty if it does
// not exist. An existing file is opened as-is; it is not truncated.
func Create(fs afero.Fs, path string, pageSize int) (*File, error) {
	return openOrCreate(fs, path, pageSize)
}

func openOrCreate(fs afero.Fs, path string, pageSize int) (*File, error) {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diskfile: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("diskfile: stat %s: %w", path, err)
	}
	return &File{
		fs:        fs,
		path:      path,
		pageSize:  pageSize,
		f:         f,
		numPages:  info.Size() / int64(pageSize),
		freePages: make(map[int64]struct{}),
	}, nil
}

// Filename returns the stable identifier used for hashing and
// equality — the path this file was opened with.
func (f *File) Filename() string { return f.path }

// Equals reports whether two File handles name the same underlying file.
func (f *File) Equals(other *File) bool {
	if other == nil {
		return false
	}
	return f.path == other.path
}

// PageSize returns the fixed page size of this file.
func (f *File) PageSize() int { return f.pageSize }

// AllocatePage reserves a fresh page, assigns it the next page
// number, and returns it zero-initialized.
func (f *File) AllocatePage() (*page.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pageNo := f.numPages
	p := page.New(pageNo, f.pageSize)
	if err := f.writeLocked(pageNo, p.Bytes()); err != nil {
		return nil, fmt.Errorf("diskfile: allocate page %d: %w", pageNo, err)
	}
	f.numPages++
	return p, nil
}

// ReadPage returns the page stored at pageNo, failing with
// ErrInvalidPage if pageNo has never been allocated (or was deleted).
func (f *File) ReadPage(pageNo int64) (*page.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pageNo < 0 || pageNo >= f.numPages {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, pageNo)
	}
	if _, deleted := f.freePages[pageNo]; deleted {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, pageNo)
	}

	buf := make([]byte, f.pageSize)
	offset := pageNo * int64(f.pageSize)
	if _, err := f.f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("diskfile: seek page %d: %w", pageNo, err)
	}
	if _, err := io.ReadFull(f.f, buf); err != nil {
		return nil, fmt.Errorf("diskfile: read page %d: %w", pageNo, err)
	}
	return page.FromBytes(pageNo, buf), nil
}

// WritePage persists the given page at its page number.
func (f *File) WritePage(p *page.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(p.PageNum(), p.Bytes())
}

func (f *File) writeLocked(pageNo int64, data []byte) error {
	if len(data) != f.pageSize {
		return fmt.Errorf("diskfile: page %d has %d bytes, want %d", pageNo, len(data), f.pageSize)
	}
	offset := pageNo * int64(f.pageSize)
	if _, err := f.f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("diskfile: seek page %d: %w", pageNo, err)
	}
	if _, err := f.f.Write(data); err != nil {
		return fmt.Errorf("diskfile: write page %d: %w", pageNo, err)
	}
	delete(f.freePages, pageNo)
	return nil
}

// DeletePage frees a page number. The space is not reclaimed; the
// page is simply marked unreadable until (if ever) reallocated by a
// higher layer.
func (f *File) DeletePage(pageNo int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pageNo < 0 || pageNo >= f.numPages {
		return fmt.Errorf("%w: %d", ErrInvalidPage, pageNo)
	}
	f.freePages[pageNo] = struct{}{}
	return nil
}

// Length returns the number of pages ever allocated in the file
// (deleted pages still count).
func (f *File) Length() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numPages
}

// Close closes the underlying file handle.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.Close()
}
