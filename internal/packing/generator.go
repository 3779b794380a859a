package packing

import (
	"fmt"
	"math"
	"slices"
)

const (
	minDailyQuantity  = 3
	maxDailyQuantity  = 10
	laundryCycleDays  = 7
	minShirtQuantity  = 2
	maxShirtQuantity  = 6
	shortTripMaxDays  = 3
	shortTripQuantity = 1
	longTripQuantity  = 2
)

// WeightClassOf buckets a weight in grams.
func WeightClassOf(weightG int) WeightClass {
	switch {
	case weightG < 50:
		return WeightNegligible
	case weightG < 200:
		return WeightLight
	case weightG < 500:
		return WeightMedium
	case weightG < 1000:
		return WeightHeavy
	default:
		return WeightVeryHeavy
	}
}

// DailyQuantity is the underwear/socks count for a trip.
func DailyQuantity(days int, laundry bool) int {
	base := days
	if laundry {
		base = min(days, laundryCycleDays)
	}
	return clamp(base, minDailyQuantity, maxDailyQuantity)
}

// ShirtQuantity scales shirts with diminishing returns.
func ShirtQuantity(days int, laundry bool) int {
	divisor := 2.0
	if laundry {
		divisor = 3.0
	}
	qty := int(math.Ceil(float64(days) / divisor))
	return clamp(qty, minShirtQuantity, maxShirtQuantity)
}

// StepQuantity is the step function used for the remaining clothing.
func StepQuantity(days int) int {
	if days <= shortTripMaxDays {
		return shortTripQuantity
	}
	return longTripQuantity
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// generateBaseItems expands trip length into scaled clothing and the fixed essentials.
func generateBaseItems(trip TripParameters, constraints Constraints) []Item {
	days := trip.TripLengthDays
	items := make([]Item, 0, len(baseClothing)+len(baseEssentials))

	for _, entry := range baseClothing {
		var qty int
		switch entry.rule {
		case scaleDaily:
			qty = DailyQuantity(days, constraints.HasLaundryAccess)
		case scaleShirts:
			qty = ShirtQuantity(days, constraints.HasLaundryAccess)
		default:
			qty = StepQuantity(days)
		}
		reason := fmt.Sprintf("%s (quantity for %d days)", entry.reason, days)
		items = append(items, entry.item(qty, reason, "base_clothing_with_trip_scaling"))
	}

	for _, entry := range baseEssentials {
		items = append(items, entry.item(1, entry.reason, "base_essentials"))
	}

	return items
}

// generateActivityItems appends activity sets in request order, then night items.
func generateActivityItems(trip TripParameters) []Item {
	var items []Item
	for _, activity := range trip.Activities {
		for _, entry := range activityItems[activity] {
			reason := fmt.Sprintf("%s (for %s activities)", entry.reason, activity)
			items = append(items, entry.item(1, reason, "activity_"+string(activity)))
		}
	}

	if slices.Contains(trip.TimeOfDay, TimeOfDayNight) {
		for _, entry := range nightItems {
			items = append(items, entry.item(1, entry.reason, "night_time_activities"))
		}
	}
	return items
}
