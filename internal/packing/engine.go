package packing

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

const (
	modeFull   = "full"
	modeSimple = "simple"

	maxChecklistNotes = 5
	userSourceRule    = "user_supplied"
	checklistReminder = "Pack essentials and double-check documents."
)

type ruleEngine struct {
	tuning         Tuning
	classification ClassificationTable
}

// Option configures the engine.
type Option func(*ruleEngine)

// WithTuning overrides the fitter scoring constants.
func WithTuning(t Tuning) Option {
	return func(e *ruleEngine) {
		e.tuning = t.Clone()
	}
}

// WithClassification overrides the security keyword table.
func WithClassification(table ClassificationTable) Option {
	return func(e *ruleEngine) {
		e.classification = table
	}
}

// New creates a rule-based Engine.
func New(opts ...Option) Engine {
	e := &ruleEngine{
		tuning:         DefaultTuning(),
		classification: DefaultClassification(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ruleEngine) Generate(req Request) (Response, error) {
	candidates, err := e.candidates(req)
	if err != nil {
		return Response{}, err
	}

	mode := modeFull
	if req.KeepItSimple {
		mode = modeSimple
		candidates = essentialsOnly(Dedupe(candidates))
	}

	res := fit(candidates, req.Constraints, e.tuning)
	return buildResponse(res, req.Constraints, mode), nil
}

func (e *ruleEngine) Checklist(req Request) (SimpleChecklist, error) {
	candidates, err := e.candidates(req)
	if err != nil {
		return SimpleChecklist{}, err
	}

	essentials := essentialsOnly(Dedupe(candidates))
	items := make([]SimpleItem, 0, len(essentials))
	for _, item := range essentials {
		items = append(items, SimpleItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Category:  item.Category,
			Essential: true,
		})
	}

	return SimpleChecklist{
		Destination:       req.Trip.Destination,
		TripLengthDays:    req.Trip.TripLengthDays,
		Items:             items,
		HighPriorityNotes: checklistNotes(candidates, req.Weather),
	}, nil
}

// candidates runs generation, weather adaptation and the security adjuster.
func (e *ruleEngine) candidates(req Request) ([]Item, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := e.tuning.Validate(); err != nil {
		return nil, err
	}
	extra, err := normalizeExtraItems(req.ExtraItems)
	if err != nil {
		return nil, err
	}

	items := generateBaseItems(req.Trip, req.Constraints)
	items = append(items, generateActivityItems(req.Trip)...)
	items = adaptForWeather(items, req.Weather)
	items = append(items, extra...)
	return ApplyTransportConstraints(items, req.Constraints, e.classification), nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.Trip.Destination) == "" {
		return ErrInvalidDestination
	}
	if req.Trip.TripLengthDays <= 0 {
		return ErrInvalidTripLength
	}
	if invalidCeiling(req.Constraints.CapacityLiters) || invalidCeiling(req.Constraints.MaxWeightKg) {
		return ErrInvalidConstraints
	}
	if w := req.Weather; w != nil {
		p := w.PrecipitationProbability
		if math.IsNaN(p) || p < 0 || p > 1 {
			return ErrInvalidConstraints
		}
	}
	return nil
}

func invalidCeiling(v *float64) bool {
	return v != nil && (math.IsNaN(*v) || *v < 0)
}

// normalizeExtraItems fills defaults for caller-supplied items.
func normalizeExtraItems(extra []Item) ([]Item, error) {
	out := make([]Item, 0, len(extra))
	for i, item := range extra {
		if strings.TrimSpace(item.Name) == "" || item.Quantity < 0 ||
			item.EstimatedWeightG < 0 || item.EstimatedVolumeML < 0 {
			return nil, fmt.Errorf("extra item %d: %w", i, ErrInvalidItem)
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Category == "" {
			item.Category = CategoryAccessories
		}
		if item.Priority == "" {
			item.Priority = PriorityNiceToHave
		}
		if item.SafetyStatus == "" {
			item.SafetyStatus = SafetySafe
		}
		if !item.Category.Valid() || !item.Priority.Valid() || !item.SafetyStatus.Valid() {
			return nil, fmt.Errorf("extra item %d (%s): %w", i, item.Name, ErrInvalidItem)
		}
		if item.SourceRule == "" {
			item.SourceRule = userSourceRule
		}
		if item.Reason == "" {
			item.Reason = "requested by traveller"
		}
		item.WeightClass = WeightClassOf(item.EstimatedWeightG)
		item.Alternatives = slices.Clone(item.Alternatives)
		out = append(out, item)
	}
	return out, nil
}

func essentialsOnly(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Priority == PriorityEssential {
			out = append(out, item)
		}
	}
	return out
}

func checklistNotes(items []Item, weather *WeatherForecast) []string {
	var notes []string
	if weather != nil && isRainy(weather) {
		notes = append(notes, "Rain is likely: keep rain gear within reach.")
	}
	if weather != nil && weather.MinC() < coldThresholdC {
		notes = append(notes, "Cold temperatures expected: pack warm layers.")
	}

	var restricted, liquids []string
	for _, item := range items {
		if item.SafetyStatus == SafetyRestricted {
			restricted = append(restricted, item.Name)
		}
		if item.Restrictions == liquidRestrictionNote {
			liquids = append(liquids, item.Name)
		}
	}
	if len(restricted) > 0 {
		notes = append(notes, "Check airline/TSA rules for: "+strings.Join(restricted, ", "))
	}
	if len(liquids) > 0 {
		notes = append(notes, "Liquids must fit in one 3-1-1 bag: "+strings.Join(liquids, ", "))
	}

	notes = append(notes, checklistReminder)
	if len(notes) > maxChecklistNotes {
		notes = notes[:maxChecklistNotes]
	}
	return notes
}
