package counter

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Overflow is what happens when a step would leave the integer range.
type Overflow int

const (
	// Saturate clamps at the minimum or maximum value.
	Saturate Overflow = iota
	// Wrap wraps around in two's complement.
	Wrap
)

func (o Overflow) String() string {
	switch o {
	case Saturate:
		return "saturate"
	case Wrap:
		return "wrap"
	default:
		return fmt.Sprintf("Overflow(%d)", int(o))
	}
}

// ParseOverflow parses "saturate" or "wrap".
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "saturate", "":
		return Saturate, nil
	case "wrap":
		return Wrap, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Step returns x+delta under policy.
func Step[T constraints.Signed](x, delta T, policy Overflow) T {
	sum := x + delta
	if policy == Wrap {
		return sum
	}
	lo, hi := bounds[T]()
	switch {
	case delta > 0 && sum < x:
		return hi
	case delta < 0 && sum > x:
		return lo
	default:
		return sum
	}
}

func bounds[T constraints.Signed]() (lo, hi T) {
	hi = 1
	for {
		next := hi<<1 | 1
		if next < hi {
			break
		}
		hi = next
	}
	return -hi - 1, hi
}
