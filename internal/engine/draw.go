package engine

import (
	"fmt"
)

// Option is one weighted entry in a draw. Weight is an integer percentage
// share; the weights of a draw's options must sum to exactly 100, which the
// catalog validator enforces before a campaign can be activated.
type Option struct {
	ID     string
	Weight int
}

// Draw performs one roulette-wheel selection over the given options: a
// single uniform integer in [0, 100) walks a cumulative weight table and the
// first option whose cumulative upper bound exceeds the draw wins. O(n) in
// the number of options and fully deterministic for a fixed Rand.
//
// Weight-sum violations indicate an unvalidated catalog upstream and are
// reported as errors rather than silently coerced.
func Draw(rng Rand, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("draw: no options")
	}

	total := 0
	for _, o := range options {
		if o.Weight < 0 {
			return "", fmt.Errorf("draw: option %s has negative weight %d", o.ID, o.Weight)
		}
		total += o.Weight
	}
	if total != 100 {
		return "", fmt.Errorf("draw: option weights sum to %d, want 100", total)
	}

	n := rng.Intn(100)
	cum := 0
	for _, o := range options {
		cum += o.Weight
		if n < cum {
			return o.ID, nil
		}
	}

	// Unreachable: n < 100 == total.
	return options[len(options)-1].ID, nil
}

// SampleRange draws a uniform value from [min, max] inclusive. Used for
// rewards carrying an amount range.
func SampleRange(rng Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rng.Int63n(max-min+1)
}
