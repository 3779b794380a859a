package packing

import (
	"reflect"
	"strings"
	"testing"
)

func shampoo() Item {
	return Item{
		Name:              "Shampoo (liquid)",
		Category:          CategoryToiletries,
		Quantity:          1,
		EstimatedWeightG:  301,
		EstimatedVolumeML: 250,
		SafetyStatus:      SafetySafe,
		Priority:          PriorityImportant,
		WeightClass:       WeightClassOf(301),
		Reason:            "hair care",
		SourceRule:        "user_supplied",
	}
}

func TestApplyTransportConstraintsRewritesLiquids(t *testing.T) {
	t.Parallel()

	input := []Item{shampoo()}
	out := ApplyTransportConstraints(input, DefaultConstraints(), DefaultClassification())

	got := out[0]
	if got.Name != "travel-size Shampoo (liquid)" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	if got.EstimatedVolumeML != 100 {
		t.Fatalf("expected volume 100, got %d", got.EstimatedVolumeML)
	}
	if got.EstimatedWeightG != 181 {
		t.Fatalf("expected weight round(301*0.6)=181, got %d", got.EstimatedWeightG)
	}
	if got.WeightClass != WeightLight {
		t.Fatalf("expected weight class to be recomputed, got %s", got.WeightClass)
	}
	if got.Restrictions == "" {
		t.Fatalf("expected restriction note")
	}
	if !strings.HasSuffix(got.Reason, "(travel-size for liquid restrictions)") {
		t.Fatalf("expected reason suffix, got %q", got.Reason)
	}

	if input[0].Name != "Shampoo (liquid)" || input[0].EstimatedVolumeML != 250 {
		t.Fatalf("input item was mutated: %+v", input[0])
	}
}

func TestApplyTransportConstraintsIsIdempotent(t *testing.T) {
	t.Parallel()

	items := []Item{shampoo(), {Name: "Pocket Knife", Category: CategoryAccessories, Quantity: 1}}
	once := ApplyTransportConstraints(items, DefaultConstraints(), DefaultClassification())
	twice := ApplyTransportConstraints(once, DefaultConstraints(), DefaultClassification())

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed items:\n%+v\n%+v", once, twice)
	}
}

func TestApplyTransportConstraintsSkipsLiquidRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		item        Item
		constraints Constraints
	}{
		{"RestrictionsDisabled", shampoo(), Constraints{LiquidRestrictions: false}},
		{"SmallContainer", func() Item { i := shampoo(); i.EstimatedVolumeML = 100; return i }(), DefaultConstraints()},
		{"NotAToiletry", func() Item { i := shampoo(); i.Category = CategoryHealth; return i }(), DefaultConstraints()},
		{"NoLiquidKeyword", func() Item { i := shampoo(); i.Name = "Shampoo bar"; return i }(), DefaultConstraints()},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := ApplyTransportConstraints([]Item{tc.item}, tc.constraints, DefaultClassification())
			if !reflect.DeepEqual(out[0], tc.item) {
				t.Fatalf("expected item unchanged, got %+v", out[0])
			}
		})
	}
}

func TestApplyTransportConstraintsFlagsRestricted(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Name: "Spare BATTERY pack", Category: CategoryElectronics, SafetyStatus: SafetySafe},
		{Name: "nail scissors", Category: CategoryToiletries, SafetyStatus: SafetySafe},
		{Name: "t-shirt", Category: CategoryClothing, SafetyStatus: SafetySafe},
	}

	out := ApplyTransportConstraints(items, Constraints{}, DefaultClassification())
	for i, want := range []SafetyStatus{SafetyRestricted, SafetyRestricted, SafetySafe} {
		if out[i].SafetyStatus != want {
			t.Fatalf("%s: expected %s, got %s", out[i].Name, want, out[i].SafetyStatus)
		}
	}
	if out[0].Restrictions == "" {
		t.Fatalf("expected restriction note on restricted item")
	}
}

func TestClassificationTableIsConfigurable(t *testing.T) {
	t.Parallel()

	table := ClassificationTable{"gel": ClassLiquid, "Multitool": ClassRestricted}
	items := []Item{
		{Name: "Hair gel", Category: CategoryToiletries, EstimatedVolumeML: 150, EstimatedWeightG: 200},
		{Name: "multitool", Category: CategoryAccessories},
		{Name: "pocket knife", Category: CategoryAccessories},
	}

	out := ApplyTransportConstraints(items, DefaultConstraints(), table)
	if out[0].Name != "travel-size Hair gel" {
		t.Fatalf("expected custom liquid keyword to apply, got %q", out[0].Name)
	}
	if out[1].SafetyStatus != SafetyRestricted {
		t.Fatalf("expected custom restricted keyword to match case-insensitively")
	}
	if out[2].SafetyStatus == SafetyRestricted {
		t.Fatalf("expected knife to be allowed with a table that omits it")
	}
}
