package timing

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

const nanosPerSecond = uint64(time.Second)

// Timestamp returns the presentation time of frame seq at rate r:
// seq * Den / Num seconds, rounded to the nearest nanosecond.
//
// The product is computed in 128 bits so sequence numbers never wrap
// silently; results beyond the range of time.Duration fail with ErrOverflow.
func Timestamp(seq uint64, r Rate) (time.Duration, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	// Den <= 2^32 and 1e9 < 2^30, so the scale fits in 64 bits.
	scale := uint64(r.Den) * nanosPerSecond
	hi, lo := bits.Mul64(seq, scale)

	num := uint64(r.Num)
	var carry uint64
	lo, carry = bits.Add64(lo, num/2, 0)
	hi += carry

	if hi >= num {
		return 0, fmt.Errorf("%w: sequence %d at %s", ErrOverflow, seq, r)
	}

	q, _ := bits.Div64(hi, lo, num)
	if q > math.MaxInt64 {
		return 0, fmt.Errorf("%w: sequence %d at %s", ErrOverflow, seq, r)
	}

	return time.Duration(q), nil
}

// Slot is the inverse of Timestamp: it returns the sequence number whose
// presentation time is nearest to pts. Negative pts map to slot 0.
func Slot(pts time.Duration, r Rate) (uint64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if pts <= 0 {
		return 0, nil
	}

	divisor := uint64(r.Den) * nanosPerSecond
	hi, lo := bits.Mul64(uint64(pts), uint64(r.Num))

	var carry uint64
	lo, carry = bits.Add64(lo, divisor/2, 0)
	hi += carry

	if hi >= divisor {
		return 0, fmt.Errorf("%w: pts %s at %s", ErrOverflow, pts, r)
	}

	q, _ := bits.Div64(hi, lo, divisor)
	return q, nil
}
