package timing

import (
	"errors"
	"fmt"
	"time"
)

// ErrSlotBehind is returned when a presentation time maps to a slot that
// has already been written.
var ErrSlotBehind = errors.New("timing: slot already written")

// Cursor tracks the next output slot of a constant-rate stream. Writers that
// emit exactly one picture per slot use it to find how many slots a
// presentation time skips.
type Cursor struct {
	rate Rate
	next uint64
}

// NewCursor returns a cursor positioned at slot 0.
func NewCursor(r Rate) *Cursor {
	return &Cursor{rate: r}
}

// Advance returns the slot of pts and the number of unwritten slots before
// it, then moves the cursor past that slot.
func (c *Cursor) Advance(pts time.Duration) (slot, gap uint64, err error) {
	slot, err = Slot(pts, c.rate)
	if err != nil {
		return 0, 0, err
	}
	if slot < c.next {
		return 0, 0, fmt.Errorf("%w: pts %s is slot %d, next is %d", ErrSlotBehind, pts, slot, c.next)
	}
	gap = slot - c.next
	c.next = slot + 1
	return slot, gap, nil
}

// Next returns the next unwritten slot, which is also the number of slots
// written so far.
func (c *Cursor) Next() uint64 {
	return c.next
}
