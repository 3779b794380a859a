package packing

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// DefaultWeightToVolumeFactor converts grams into the volume-equivalent
// penalty used by the value density. It is a tuning constant.
const DefaultWeightToVolumeFactor = 0.001

// Tuning holds the fitter's scoring constants.
type Tuning struct {
	PriorityScores       map[Priority]float64 `json:"priority_scores" yaml:"priority_scores"`
	WeightToVolumeFactor float64              `json:"weight_to_volume_factor" yaml:"weight_to_volume_factor"`
}

// DefaultTuning returns essential=100, important=70, nice-to-have=40,
// luxury=10 and a 0.001 weight factor.
func DefaultTuning() Tuning {
	return Tuning{
		PriorityScores: map[Priority]float64{
			PriorityEssential:  100,
			PriorityImportant:  70,
			PriorityNiceToHave: 40,
			PriorityLuxury:     10,
		},
		WeightToVolumeFactor: DefaultWeightToVolumeFactor,
	}
}

// Validate checks that every priority has a positive score and that no
// score is keyed by an unknown priority.
func (t Tuning) Validate() error {
	if t.WeightToVolumeFactor < 0 || math.IsNaN(t.WeightToVolumeFactor) || math.IsInf(t.WeightToVolumeFactor, 0) {
		return ErrInvalidTuning
	}
	for p := range t.PriorityScores {
		if !p.Valid() {
			return fmt.Errorf("unknown priority %q: %w", p, ErrInvalidTuning)
		}
	}
	for _, p := range Priorities() {
		score, ok := t.PriorityScores[p]
		if !ok || score <= 0 || math.IsNaN(score) || math.IsInf(score, 0) {
			return ErrInvalidTuning
		}
	}
	return nil
}

// Clone returns a copy that shares no map with t.
func (t Tuning) Clone() Tuning {
	return Tuning{
		PriorityScores:       maps.Clone(t.PriorityScores),
		WeightToVolumeFactor: t.WeightToVolumeFactor,
	}
}

// ValueDensity is the priority score divided by the combined volume and
// weight cost. Zero-cost items are infinitely dense.
func (t Tuning) ValueDensity(item Item) float64 {
	cost := float64(item.EstimatedVolumeML) + float64(item.EstimatedWeightG)*t.WeightToVolumeFactor
	score := t.PriorityScores[item.Priority]
	if cost == 0 {
		return math.Inf(1)
	}
	return score / cost
}

type ceilings struct {
	volumeML float64
	weightG  float64
}

func ceilingsOf(c Constraints) (ceilings, bool) {
	limits := ceilings{volumeML: math.Inf(1), weightG: math.Inf(1)}
	if c.CapacityLiters == nil && c.MaxWeightKg == nil {
		return limits, false
	}
	if c.CapacityLiters != nil {
		limits.volumeML = *c.CapacityLiters * 1000
	}
	if c.MaxWeightKg != nil {
		limits.weightG = *c.MaxWeightKg * 1000
	}
	return limits, true
}

// Fit selects the highest value-density subset of items that stays within the
// capacity and weight ceilings. Items that would break a ceiling are skipped
// and scanning continues with the rest. The selection is returned in
// acceptance order together with one violation per skipped item.
func Fit(items []Item, constraints Constraints, tuning Tuning) ([]Item, []string) {
	res := fit(items, constraints, tuning)
	return res.selected, res.violations
}

type fitResult struct {
	selected   []Item
	removed    []Item
	violations []string
}

func fit(items []Item, constraints Constraints, tuning Tuning) fitResult {
	res := fitResult{violations: []string{}}
	limits, constrained := ceilingsOf(constraints)
	if !constrained {
		res.selected = slices.Clone(items)
		return res
	}

	totalVolume, totalWeight := totals(items)
	if float64(totalVolume) <= limits.volumeML && float64(totalWeight) <= limits.weightG {
		res.selected = slices.Clone(items)
		return res
	}

	type valued struct {
		item    Item
		density float64
	}
	ranked := make([]valued, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, valued{item: item, density: tuning.ValueDensity(item)})
	}
	slices.SortStableFunc(ranked, func(a, b valued) int {
		return cmp.Compare(b.density, a.density)
	})

	res.selected = make([]Item, 0, len(items))
	var runningVolume, runningWeight int
	for _, v := range ranked {
		newVolume := runningVolume + v.item.EstimatedVolumeML
		newWeight := runningWeight + v.item.EstimatedWeightG

		overVolume := float64(newVolume) > limits.volumeML
		overWeight := float64(newWeight) > limits.weightG
		if !overVolume && !overWeight {
			res.selected = append(res.selected, v.item)
			runningVolume, runningWeight = newVolume, newWeight
			continue
		}

		var exceeded []string
		if overVolume {
			exceeded = append(exceeded, fmt.Sprintf("volume limit (%.1fL)", limits.volumeML/1000))
		}
		if overWeight {
			exceeded = append(exceeded, fmt.Sprintf("weight limit (%.1fkg)", limits.weightG/1000))
		}
		res.removed = append(res.removed, v.item)
		res.violations = append(res.violations, fmt.Sprintf("Removed '%s' - exceeds %s", v.item.Name, strings.Join(exceeded, ", ")))
	}

	return res
}

func totals(items []Item) (volumeML, weightG int) {
	for _, item := range items {
		volumeML += item.EstimatedVolumeML
		weightG += item.EstimatedWeightG
	}
	return volumeML, weightG
}
