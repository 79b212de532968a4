package sim

import "fmt"

// Pairing selects which body pairs the driver tests for contact after each
// step. The world itself never pairs bodies.
type Pairing int

const (
	PairAll Pairing = iota
	PairNone
)

func ParsePairing(s string) (Pairing, error) {
	switch s {
	case "", "all":
		return PairAll, nil
	case "none":
		return PairNone, nil
	}
	return PairAll, fmt.Errorf("unknown pairing %q (want all or none)", s)
}

func (p Pairing) String() string {
	switch p {
	case PairAll:
		return "all"
	case PairNone:
		return "none"
	}
	return fmt.Sprintf("Pairing(%d)", int(p))
}

// pairs calls fn for each selected (i, j) with i < j.
func (p Pairing) pairs(n int, fn func(i, j int)) {
	if p != PairAll {
		return
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			fn(i, j)
		}
	}
}
