package packing

import "math"

// summarize builds per-category summaries over the final selection.
func summarize(items []Item) map[Category]CategorySummary {
	summaries := make(map[Category]CategorySummary)
	for _, item := range items {
		sum, ok := summaries[item.Category]
		if !ok {
			sum = CategorySummary{
				PriorityDistribution:     make(map[Priority]int),
				SafetyStatusDistribution: make(map[SafetyStatus]int),
			}
		}
		sum.ItemCount++
		sum.TotalWeightG += item.EstimatedWeightG
		sum.TotalVolumeML += item.EstimatedVolumeML
		sum.PriorityDistribution[item.Priority]++
		sum.SafetyStatusDistribution[item.SafetyStatus]++
		summaries[item.Category] = sum
	}
	return summaries
}

// analyzeCapacity reports ceiling usage; it returns nil when no ceiling is set.
func analyzeCapacity(res fitResult, constraints Constraints) *CapacityAnalysis {
	limits, constrained := ceilingsOf(constraints)
	if !constrained {
		return nil
	}

	volume, weight := totals(res.selected)
	analysis := &CapacityAnalysis{
		CapacityUsedPercent: usedPercent(volume, limits.volumeML),
		WeightUsedPercent:   usedPercent(weight, limits.weightG),
	}
	for _, item := range res.removed {
		analysis.SuggestedRemovals = append(analysis.SuggestedRemovals, item.Name)
	}
	return analysis
}

func usedPercent(total int, ceiling float64) float64 {
	if ceiling <= 0 || math.IsInf(ceiling, 1) {
		return 0
	}
	return float64(total) / ceiling * 100
}

func buildResponse(res fitResult, constraints Constraints, mode string) Response {
	selected := res.selected
	if selected == nil {
		selected = []Item{}
	}
	volume, weight := totals(selected)
	return Response{
		Items:                  selected,
		TotalEstimatedWeightG:  weight,
		TotalEstimatedVolumeML: volume,
		FitsConstraints:        len(res.violations) == 0,
		ConstraintViolations:   res.violations,
		CategorySummaries:      summarize(selected),
		CapacityAnalysis:       analyzeCapacity(res, constraints),
		GenerationMode:         mode,
	}
}
