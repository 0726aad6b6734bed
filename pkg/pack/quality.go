package pack

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// OverlapTolerance is the overlap depth below which two circles count as
// touching rather than overlapping.
const OverlapTolerance = 1e-6

// OverlapReport summarizes pairwise overlap of packed circles.
type OverlapReport struct {
	Pairs int     // Number of overlapping pairs
	Max   float64 // Deepest overlap
	Total float64 // Sum of overlap depths
	Worst [2]int  // Cluster indices of the deepest overlap; {-1, -1} when none
}

// Clean reports whether no pair overlaps.
func (r OverlapReport) Clean() bool { return r.Pairs == 0 }

func (r OverlapReport) String() string {
	if r.Clean() {
		return "no overlap"
	}
	return fmt.Sprintf("%d overlapping pairs, max %.3g (clusters %d and %d), total %.3g",
		r.Pairs, r.Max, r.Worst[0], r.Worst[1], r.Total)
}

// Overlaps measures how far circles intrude into each other, requiring an
// additional gap of padding. Circles of radius 0 are ignored.
func Overlaps(centers []r2.Vec, radii []float64, padding float64) OverlapReport {
	rep := OverlapReport{Worst: [2]int{-1, -1}}
	for i := range centers {
		if radii[i] <= 0 {
			continue
		}
		for j := i + 1; j < len(centers); j++ {
			if radii[j] <= 0 {
				continue
			}
			d := r2.Norm(r2.Sub(centers[i], centers[j]))
			depth := radii[i] + radii[j] + padding - d
			if depth <= OverlapTolerance {
				continue
			}
			rep.Pairs++
			rep.Total += depth
			if depth > rep.Max {
				rep.Max = depth
				rep.Worst = [2]int{i, j}
			}
		}
	}
	return rep
}
