package buffer

import "hash/fnv"

// bucket is one entry of a hash chain: the (filename, pageNo) key
// together with the frame it maps to. Chains are singly linked and
// prepended to, matching the original hash table's chaining scheme.
type bucket struct {
	filename string
	pageNo   int64
	frameNo  FrameID
	next     *bucket
}

// HashIndex is the page lookup index (spec §3/§4.2): a fixed-capacity,
// open-chained hash from (file, pageNo) to frameId. It is the sole
// source of truth for residency.
type HashIndex struct {
	size  int
	table []*bucket
}

// hashTableSize computes HTSIZE = ((numBufs*6/5) &^ 1) | 1, an odd
// capacity at least 1.2x numBufs (spec §3).
func hashTableSize(numBufs int) int {
	n := (numBufs * 6) / 5
	n = n &^ 1 // clear the low bit
	return n | 1
}

// NewHashIndex creates a lookup index sized for numBufs frames.
func NewHashIndex(numBufs int) *HashIndex {
	size := hashTableSize(numBufs)
	return &HashIndex{size: size, table: make([]*bucket, size)}
}

func (h *HashIndex) hash(filename string, pageNo int64) int {
	fh := fnv.New32a()
	_, _ = fh.Write([]byte(filename))
	pageHash := fnv.New32a()
	var pageBytes [8]byte
	for i := 0; i < 8; i++ {
		pageBytes[i] = byte(pageNo >> (8 * i))
	}
	_, _ = pageHash.Write(pageBytes[:])
	combined := fh.Sum32() ^ pageHash.Sum32()
	return int(combined) % h.size
}

// Insert adds (filename, pageNo) -> frameNo, failing with
// HashAlreadyPresentError if the key is already mapped.
func (h *HashIndex) Insert(filename string, pageNo int64, frameNo FrameID) error {
	idx := h.hash(filename, pageNo)
	for b := h.table[idx]; b != nil; b = b.next {
		if b.filename == filename && b.pageNo == pageNo {
			return &HashAlreadyPresentError{Filename: b.filename, PageNo: b.pageNo, FrameNo: b.frameNo}
		}
	}
	h.table[idx] = &bucket{filename: filename, pageNo: pageNo, frameNo: frameNo, next: h.table[idx]}
	return nil
}

// Lookup returns the frame mapped to (filename, pageNo), or
// HashNotFoundError if there is no such mapping.
func (h *HashIndex) Lookup(filename string, pageNo int64) (FrameID, error) {
	idx := h.hash(filename, pageNo)
	for b := h.table[idx]; b != nil; b = b.next {
		if b.filename == filename && b.pageNo == pageNo {
			return b.frameNo, nil
		}
	}
	return 0, &HashNotFoundError{Filename: filename, PageNo: pageNo}
}

// Remove deletes the (filename, pageNo) mapping, or fails with
// HashNotFoundError if it isn't present.
func (h *HashIndex) Remove(filename string, pageNo int64) error {
	idx := h.hash(filename, pageNo)
	var prev *bucket
	for b := h.table[idx]; b != nil; b = b.next {
		if b.filename == filename && b.pageNo == pageNo {
			if prev != nil {
				prev.next = b.next
			} else {
				h.table[idx] = b.next
			}
			return nil
		}
		prev = b
	}
	return &HashNotFoundError{Filename: filename, PageNo: pageNo}
}
