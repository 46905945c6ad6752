package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageIsEmpty(t *testing.T) {
	p := New(0, DefaultSize)
	assert.Equal(t, int64(0), p.PageNum())
	assert.Equal(t, DefaultSize, p.Size())
	assert.Equal(t, 0, p.NumSlots())
}

func TestInsertAndGetRecord(t *testing.T) {
	p := New(7, DefaultSize)

	slot1, err := p.InsertRecord([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 0, slot1)

	slot2, err := p.InsertRecord([]byte("world!!"))
	require.NoError(t, err)
	assert.Equal(t, 1, slot2)

	assert.Equal(t, 2, p.NumSlots())

	rec1, err := p.GetRecord(slot1)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), rec1)

	rec2, err := p.GetRecord(slot2)
	require.NoError(t, err)
	assert.Equal(t, []byte("world!!"), rec2)
}

func TestGetRecordOutOfRange(t *testing.T) {
	p := New(0, DefaultSize)
	_, err := p.GetRecord(0)
	require.Error(t, err)
}

func TestDeleteRecordHidesFromGetAndIterate(t *testing.T) {
	p := New(0, DefaultSize)
	slot, err := p.InsertRecord([]byte("throwaway"))
	require.NoError(t, err)

	require.NoError(t, p.DeleteRecord(slot))

	_, err = p.GetRecord(slot)
	require.Error(t, err)

	seen := 0
	p.Iterate(func(_ int, _ []byte) bool {
		seen++
		return true
	})
	assert.Equal(t, 0, seen)
}

func TestIterateVisitsLiveRecordsInSlotOrder(t *testing.T) {
	p := New(0, DefaultSize)
	want := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for _, rec := range want {
		_, err := p.InsertRecord(rec)
		require.NoError(t, err)
	}

	var got [][]byte
	p.Iterate(func(_ int, rec []byte) bool {
		cp := append([]byte(nil), rec...)
		got = append(got, cp)
		return true
	})
	assert.Equal(t, want, got)
}

func TestInsertRecordFailsWhenFull(t *testing.T) {
	p := New(0, 32)
	_, err := p.InsertRecord(make([]byte, 64))
	require.Error(t, err)
}

func TestFromBytesRoundTrip(t *testing.T) {
	p := New(3, DefaultSize)
	_, err := p.InsertRecord([]byte("persisted"))
	require.NoError(t, err)

	p2 := FromBytes(3, p.Bytes())
	rec, err := p2.GetRecord(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), rec)
}
