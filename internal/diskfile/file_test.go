package diskfile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testPageSize = 256

func newTestFile(t *testing.T) *File {
	t.Helper()
	fs := afero.NewMemMapFs()
	f, err := Create(fs, "/data/test.db", testPageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestAllocatePageAssignsSequentialNumbers(t *testing.T) {
	f := newTestFile(t)

	p0, err := f.AllocatePage()
	require.NoError(t, err)
	require.EqualValues(t, 0, p0.PageNum())

	p1, err := f.AllocatePage()
	require.NoError(t, err)
	require.EqualValues(t, 1, p1.PageNum())
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	f := newTestFile(t)

	p, err := f.AllocatePage()
	require.NoError(t, err)
	_, err = p.InsertRecord([]byte("round trip"))
	require.NoError(t, err)
	require.NoError(t, f.WritePage(p))

	got, err := f.ReadPage(p.PageNum())
	require.NoError(t, err)
	rec, err := got.GetRecord(0)
	require.NoError(t, err)
	require.Equal(t, []byte("round trip"), rec)
}

func TestReadPageBeyondLengthFails(t *testing.T) {
	f := newTestFile(t)
	_, err := f.ReadPage(1)
	require.ErrorIs(t, err, ErrInvalidPage)
}

func TestDeletedPageIsUnreadable(t *testing.T) {
	f := newTestFile(t)
	p, err := f.AllocatePage()
	require.NoError(t, err)

	require.NoError(t, f.DeletePage(p.PageNum()))
	_, err = f.ReadPage(p.PageNum())
	require.ErrorIs(t, err, ErrInvalidPage)
}

func TestOpenMissingFileFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Open(fs, "/data/missing.db", testPageSize)
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestEquals(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, err := Create(fs, "/data/a.db", testPageSize)
	require.NoError(t, err)
	b, err := Open(fs, "/data/a.db", testPageSize)
	require.NoError(t, err)
	c, err := Create(fs, "/data/c.db", testPageSize)
	require.NoError(t, err)

	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))
}
