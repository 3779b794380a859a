package packing

import (
	"math"
	"strings"
)

// ItemClass is the security classification a keyword assigns.
type ItemClass string

const (
	ClassLiquid     ItemClass = "liquid"
	ClassRestricted ItemClass = "restricted"
)

const (
	travelSizePrefix      = "travel-size "
	liquidLimitML         = 100
	travelSizeWeightRatio = 0.6

	liquidRestrictionNote = "Must fit in 3-1-1 liquid bag"
	liquidReasonSuffix    = " (travel-size for liquid restrictions)"
	restrictedItemNote    = "Check airline/TSA restrictions before packing"
)

// ClassificationTable maps lowercase keywords to a class. Item names match a
// keyword by case-insensitive substring containment.
type ClassificationTable map[string]ItemClass

// DefaultClassification returns the stock liquid and restricted keywords.
func DefaultClassification() ClassificationTable {
	return ClassificationTable{
		"liquid":   ClassLiquid,
		"knife":    ClassRestricted,
		"blade":    ClassRestricted,
		"battery":  ClassRestricted,
		"lighter":  ClassRestricted,
		"scissors": ClassRestricted,
	}
}

// Matches reports whether name contains any keyword of the given class.
func (t ClassificationTable) Matches(name string, class ItemClass) bool {
	lower := strings.ToLower(name)
	for keyword, c := range t {
		if c == class && strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// ApplyTransportConstraints rewrites oversized liquids to travel size and
// flags restricted items. It returns adjusted copies; items is not modified.
func ApplyTransportConstraints(items []Item, constraints Constraints, table ClassificationTable) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, adjustItem(item, constraints, table))
	}
	return out
}

func adjustItem(item Item, constraints Constraints, table ClassificationTable) Item {
	if constraints.LiquidRestrictions &&
		item.Category == CategoryToiletries &&
		table.Matches(item.Name, ClassLiquid) &&
		item.EstimatedVolumeML > liquidLimitML {
		item.Name = travelSizePrefix + item.Name
		item.EstimatedVolumeML = min(liquidLimitML, item.EstimatedVolumeML)
		item.EstimatedWeightG = int(math.Round(float64(item.EstimatedWeightG) * travelSizeWeightRatio))
		item.WeightClass = WeightClassOf(item.EstimatedWeightG)
		item.Reason += liquidReasonSuffix
		item.Restrictions = liquidRestrictionNote
	}

	if table.Matches(item.Name, ClassRestricted) {
		item.SafetyStatus = SafetyRestricted
		item.Restrictions = restrictedItemNote
	}

	if len(item.Alternatives) > 0 {
		item.Alternatives = append([]string(nil), item.Alternatives...)
	}
	return item
}
