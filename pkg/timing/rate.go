// Package timing maps frame sequence numbers to presentation timestamps
// using exact rational arithmetic.
package timing

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

var (
	// ErrInvalidRate is returned for zero or unrepresentable frame rates.
	ErrInvalidRate = errors.New("timing: invalid frame rate")

	// ErrOverflow is returned when a timestamp does not fit in 64-bit nanoseconds.
	ErrOverflow = errors.New("timing: timestamp overflow")
)

// Rate is a frame rate expressed as Num/Den frames per second.
// 30 fps is {30, 1}; NTSC 29.97 is {30000, 1001}.
type Rate struct {
	Num uint32
	Den uint32
}

// NewRate returns a reduced Rate.
func NewRate(num, den uint32) (Rate, error) {
	r := Rate{Num: num, Den: den}
	if err := r.Validate(); err != nil {
		return Rate{}, err
	}
	return r.reduce(), nil
}

// ParseRate parses "30", "30000/1001" or "29.97".
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rate{}, fmt.Errorf("%w: empty", ErrInvalidRate)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	if r.Sign() <= 0 {
		return Rate{}, fmt.Errorf("%w: %q must be positive", ErrInvalidRate, s)
	}

	num, den := r.Num(), r.Denom()
	if !num.IsUint64() || !den.IsUint64() ||
		num.Uint64() > math.MaxUint32 || den.Uint64() > math.MaxUint32 {
		return Rate{}, fmt.Errorf("%w: %q out of range", ErrInvalidRate, s)
	}

	return Rate{Num: uint32(num.Uint64()), Den: uint32(den.Uint64())}, nil
}

// Validate reports whether the rate can be used for timestamping.
func (r Rate) Validate() error {
	if r.Num == 0 || r.Den == 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidRate, r.Num, r.Den)
	}
	return nil
}

// IsInteger reports whether the rate is a whole number of frames per second.
func (r Rate) IsInteger() bool {
	return r.Den != 0 && r.Num%r.Den == 0
}

// FPS returns the rate as a float, for display only.
func (r Rate) FPS() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// FrameInterval returns the nominal spacing between frames, rounded to the
// nearest nanosecond.
func (r Rate) FrameInterval() time.Duration {
	d, err := Timestamp(1, r)
	if err != nil {
		return 0
	}
	return d
}

// String formats the rate as "Num/Den", or "Num" when Den is 1.
func (r Rate) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r Rate) reduce() Rate {
	a, b := r.Num, r.Den
	for b != 0 {
		a, b = b, a%b
	}
	return Rate{Num: r.Num / a, Den: r.Den / a}
}
