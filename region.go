package driftfield

import (
	"fmt"
	"math"
)

// Region describes one sub-shape of a composite field: its sampler, its share
// of the particle budget, and the attribute rules applied to its particles.
// For mesh regions, Weight is typically the mesh's TotalArea so the split is
// area-proportional.
type Region struct {
	Name   string
	Shape  Shape
	Weight float64
	Attr   AttributeRule
}

// IndexRange is the contiguous [Start, End) slice of the particle arrays that
// a region's particles occupy.
type IndexRange struct {
	Start, End int
}

// Len returns the number of particles in the range.
func (r IndexRange) Len() int {
	return r.End - r.Start
}

// splitBudget partitions total across the weights using largest-remainder
// rounding, so the counts always sum to total. Zero or negative weights get
// zero particles (a degenerate region is not an error, it is just empty).
func splitBudget(total int, weights []float64) []int {
	counts := make([]int, len(weights))
	if total <= 0 {
		return counts
	}

	weightSum := 0.0
	for _, w := range weights {
		if w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
			weightSum += w
		}
	}
	if weightSum == 0 {
		return counts
	}

	type slot struct {
		index     int
		remainder float64
	}
	assigned := 0
	slots := make([]slot, 0, len(weights))
	for i, w := range weights {
		if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			continue
		}
		exact := float64(total) * w / weightSum
		counts[i] = int(exact)
		assigned += counts[i]
		slots = append(slots, slot{index: i, remainder: exact - float64(counts[i])})
	}

	// Hand the leftover particles to the largest remainders, ties broken by
	// region order so the split stays deterministic.
	for assigned < total {
		best := -1
		for s := range slots {
			if best < 0 || slots[s].remainder > slots[best].remainder {
				best = s
			}
		}
		counts[slots[best].index]++
		slots[best].remainder = -1
		assigned++
	}
	return counts
}

// validateRegions checks every region's shape and weight before sampling.
func validateRegions(regions []Region) error {
	if len(regions) == 0 {
		return fmt.Errorf("config needs at least one region")
	}
	for i, reg := range regions {
		if reg.Shape == nil {
			return fmt.Errorf("region %d (%q): shape is nil", i, reg.Name)
		}
		if err := reg.Shape.Validate(); err != nil {
			return fmt.Errorf("region %d (%q): %w", i, reg.Name, err)
		}
		if math.IsNaN(reg.Weight) || math.IsInf(reg.Weight, 0) || reg.Weight < 0 {
			return fmt.Errorf("region %d (%q): weight must be finite and non-negative, got %v",
				i, reg.Name, reg.Weight)
		}
		if err := reg.Attr.validate(); err != nil {
			return fmt.Errorf("region %d (%q): %w", i, reg.Name, err)
		}
	}
	return nil
}
