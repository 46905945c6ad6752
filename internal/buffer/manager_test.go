package buffer

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/dbkit/bufferpool/internal/diskfile"
)

const testPageSize = 256

func newTestFile(t *testing.T, fs afero.Fs, name string) *diskfile.File {
	t.Helper()
	f, err := diskfile.Create(fs, name, testPageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func recordFor(filename string, pageNo int64) []byte {
	return []byte(fmt.Sprintf("%s Page %d %d", filename, pageNo, pageNo))
}

func TestAllocateThenReadAllMatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(100, testPageSize)

	pageNos := make([]int64, 100)
	for i := 0; i < 100; i++ {
		pageNo, p, err := m.AllocPage(file)
		require.NoError(t, err)
		_, err = p.InsertRecord(recordFor("test.1", pageNo))
		require.NoError(t, err)
		require.NoError(t, m.UnpinPage(file, pageNo, true))
		pageNos[i] = pageNo
	}

	for _, pageNo := range pageNos {
		p, err := m.ReadPage(file, pageNo)
		require.NoError(t, err)
		rec, err := p.GetRecord(0)
		require.NoError(t, err)
		require.Equal(t, string(recordFor("test.1", pageNo)), string(rec))
		require.NoError(t, m.UnpinPage(file, pageNo, false))
	}
}

func TestCrossFileInterleave(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := []*diskfile.File{
		newTestFile(t, fs, "test.1"),
		newTestFile(t, fs, "test.2"),
		newTestFile(t, fs, "test.3"),
	}
	m := NewManager(100, testPageSize)

	for i := 0; i < 33; i++ {
		for _, f := range files {
			pageNo, p, err := m.AllocPage(f)
			require.NoError(t, err)
			_, err = p.InsertRecord(recordFor(f.Filename(), pageNo))
			require.NoError(t, err)
			require.NoError(t, m.UnpinPage(f, pageNo, true))

			got, err := m.ReadPage(f, pageNo)
			require.NoError(t, err)
			rec, err := got.GetRecord(0)
			require.NoError(t, err)
			require.Equal(t, string(recordFor(f.Filename(), pageNo)), string(rec))
			require.NoError(t, m.UnpinPage(f, pageNo, false))
		}
	}
}

func TestReadInvalidPagePropagatesFileError(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "empty.db")
	m := NewManager(10, testPageSize)

	_, err := m.ReadPage(file, 1)
	require.ErrorIs(t, err, diskfile.ErrInvalidPage)
}

func TestDoubleUnpinFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(10, testPageSize)

	pageNo, _, err := m.AllocPage(file)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(file, pageNo, true))

	err = m.UnpinPage(file, pageNo, false)
	require.Error(t, err)
	var notPinned *PageNotPinnedError
	require.ErrorAs(t, err, &notPinned)
}

func TestPoolExhaustionReturnsBufferExceeded(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(10, testPageSize)

	for i := 0; i < 10; i++ {
		_, _, err := m.AllocPage(file)
		require.NoError(t, err)
	}

	_, _, err := m.AllocPage(file)
	require.Error(t, err)
	var exceeded *BufferExceededError
	require.ErrorAs(t, err, &exceeded)
}

func TestFlushFileWithPinsFailsThenSucceedsAfterUnpin(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(10, testPageSize)

	pageNos := make([]int64, 5)
	for i := range pageNos {
		pageNo, _, err := m.AllocPage(file)
		require.NoError(t, err)
		pageNos[i] = pageNo
	}

	err := m.FlushFile(file)
	require.Error(t, err)
	var pinned *PagePinnedError
	require.ErrorAs(t, err, &pinned)

	for _, pageNo := range pageNos {
		require.NoError(t, m.UnpinPage(file, pageNo, true))
	}
	require.NoError(t, m.FlushFile(file))

	// Reading again after flush must hit disk, not the pool cache: the
	// descriptor table is now empty for this file.
	p, err := m.ReadPage(file, pageNos[0])
	require.NoError(t, err)
	require.Equal(t, pageNos[0], p.PageNum())
	require.NoError(t, m.UnpinPage(file, pageNos[0], false))
}

func TestDisposePageRemovesResidencyAndDeletesOnFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(10, testPageSize)

	pageNo, _, err := m.AllocPage(file)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(file, pageNo, false))

	require.NoError(t, m.DisposePage(file, pageNo))

	_, err = file.ReadPage(pageNo)
	require.ErrorIs(t, err, diskfile.ErrInvalidPage)
}

func TestDisposeUnresidentPageStillDeletes(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(10, testPageSize)

	pageNo, _, err := m.AllocPage(file)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(file, pageNo, false))
	require.NoError(t, m.FlushFile(file)) // evicts it from the pool

	require.NoError(t, m.DisposePage(file, pageNo))
	_, err = file.ReadPage(pageNo)
	require.ErrorIs(t, err, diskfile.ErrInvalidPage)
}

func TestUnpinMissingPageIsSilentNoOp(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(10, testPageSize)

	require.NoError(t, m.UnpinPage(file, 42, true))
}

func TestDescribeReportsResidentFrames(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := newTestFile(t, fs, "test.1")
	m := NewManager(4, testPageSize)

	pageNo, _, err := m.AllocPage(file)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(file, pageNo, false))

	reports := m.Describe()
	require.Len(t, reports, 4)

	residentCount := 0
	for _, r := range reports {
		if r.Valid {
			residentCount++
			require.Equal(t, file.Filename(), r.File)
			require.Equal(t, pageNo, r.PageNo)
		}
	}
	require.Equal(t, 1, residentCount)
	require.Contains(t, m.String(), "resident=1/4")
}

func TestEvictionWritesBackDirtyVictimUsingItsOwnFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	fileA := newTestFile(t, fs, "a.db")
	fileB := newTestFile(t, fs, "b.db")
	m := NewManager(1, testPageSize)

	pageA, p, err := m.AllocPage(fileA)
	require.NoError(t, err)
	_, err = p.InsertRecord([]byte("dirty-a"))
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(fileA, pageA, true))

	// Forces eviction of the sole frame, which currently holds a dirty
	// page belonging to fileA, not fileB.
	pageB, _, err := m.AllocPage(fileB)
	require.NoError(t, err)
	require.NoError(t, m.UnpinPage(fileB, pageB, false))

	onDisk, err := fileA.ReadPage(pageA)
	require.NoError(t, err)
	rec, err := onDisk.GetRecord(0)
	require.NoError(t, err)
	require.Equal(t, "dirty-a", string(rec))
}
