package prepare

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the sequence lengths of a split, in sub-word pieces (sequence labeling) or
// encoded tokens (classification).
type Stats struct {
	Examples int
	Batches  int
	MeanLen  float64
	StdLen   float64
	MaxLen   int

	// Skipped counts examples left out: sentences with no sub-word pieces, or malformed lines.
	Skipped int
}

func newStats(lengths []int) Stats {
	s := Stats{Examples: len(lengths)}
	if len(lengths) == 0 {
		return s
	}
	xs := make([]float64, len(lengths))
	for i, l := range lengths {
		xs[i] = float64(l)
		s.MaxLen = max(s.MaxLen, l)
	}
	if len(xs) == 1 {
		s.MeanLen = xs[0]
		return s
	}
	s.MeanLen, s.StdLen = stat.MeanStdDev(xs, nil)
	return s
}
