package buffer

// clock implements the second-chance (clock) replacement algorithm
// (spec §4.3) over a shared descriptor table. It owns only the hand
// position; residency state lives in the descriptors themselves.
//
// The hand starts at numBufs-1 so the very first advance lands on
// frame 0 (spec §3 "Clock hand").
type clock struct {
	descriptors []*Descriptor
	hand        int
}

func newClock(descriptors []*Descriptor) *clock {
	return &clock{descriptors: descriptors, hand: len(descriptors) - 1}
}

func (c *clock) advance() {
	c.hand = (c.hand + 1) % len(c.descriptors)
}

// selectVictim runs the abstract procedure from spec §4.3: advance
// the hand, skip referenced frames (clearing the bit), skip pinned
// frames (counting consecutive pinned sightings), and stop at the
// first invalid or evictable frame. evict is called exactly once, on
// the chosen descriptor, before selectVictim returns its frame id; it
// is responsible for writeback and index removal (or is a no-op for
// an already-empty frame). If evict returns an error, the frame is
// left untouched and the error propagates to the caller.
func (c *clock) selectVictim(evict func(d *Descriptor) error) (FrameID, error) {
	numBufs := len(c.descriptors)
	if numBufs == 0 {
		return 0, &BufferExceededError{}
	}

	pinnedSeen := 0
	for {
		c.advance()
		d := c.descriptors[c.hand]

		if !d.valid {
			if err := evict(d); err != nil {
				return 0, err
			}
			return d.frameNo, nil
		}

		if d.refbit {
			d.refbit = false
			continue
		}

		if d.pinCnt > 0 {
			pinnedSeen++
			if pinnedSeen == numBufs {
				return 0, &BufferExceededError{}
			}
			continue
		}

		// valid, refbit clear, unpinned: victim.
		if err := evict(d); err != nil {
			return 0, err
		}
		return d.frameNo, nil
	}
}
