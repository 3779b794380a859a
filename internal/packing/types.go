package packing

import (
	"slices"
	"time"
)

// Category groups items in summaries.
type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryToiletries  Category = "toiletries"
	CategoryElectronics Category = "electronics"
	CategoryDocuments   Category = "documents"
	CategoryHealth      Category = "health"
	CategoryAccessories Category = "accessories"
	CategoryWeatherGear Category = "weather_gear"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryClothing, CategoryToiletries, CategoryElectronics, CategoryDocuments,
		CategoryHealth, CategoryAccessories, CategoryWeatherGear:
		return true
	}
	return false
}

// SafetyStatus is the airport security status of an item.
type SafetyStatus string

const (
	SafetySafe       SafetyStatus = "safe"
	SafetyRestricted SafetyStatus = "restricted"
	SafetyProhibited SafetyStatus = "prohibited"
)

// Valid reports whether s is a known status.
func (s SafetyStatus) Valid() bool {
	return s == SafetySafe || s == SafetyRestricted || s == SafetyProhibited
}

// Priority drives the fitter's value score.
type Priority string

const (
	PriorityEssential  Priority = "essential"
	PriorityImportant  Priority = "important"
	PriorityNiceToHave Priority = "nice-to-have"
	PriorityLuxury     Priority = "luxury"
)

// Priorities lists every priority from most to least valuable.
func Priorities() []Priority {
	return []Priority{PriorityEssential, PriorityImportant, PriorityNiceToHave, PriorityLuxury}
}

// Valid reports whether p is one of Priorities.
func (p Priority) Valid() bool {
	return slices.Contains(Priorities(), p)
}

// WeightClass is a coarse bucket derived from an item's weight.
type WeightClass string

const (
	WeightNegligible WeightClass = "negligible"
	WeightLight      WeightClass = "light"
	WeightMedium     WeightClass = "medium"
	WeightHeavy      WeightClass = "heavy"
	WeightVeryHeavy  WeightClass = "very-heavy"
)

// Activity is a trip activity tag.
type Activity string

const (
	ActivityBusiness  Activity = "business"
	ActivityCasual    Activity = "casual"
	ActivityOutdoor   Activity = "outdoor"
	ActivityBeach     Activity = "beach"
	ActivityFormal    Activity = "formal"
	ActivityHiking    Activity = "hiking"
	ActivityCultural  Activity = "cultural"
	ActivityNightlife Activity = "nightlife"
)

// Condition is a weather condition tag.
type Condition string

const (
	ConditionHot   Condition = "hot"
	ConditionWarm  Condition = "warm"
	ConditionCool  Condition = "cool"
	ConditionCold  Condition = "cold"
	ConditionRainy Condition = "rainy"
	ConditionSnowy Condition = "snowy"
	ConditionWindy Condition = "windy"
)

const (
	TimeOfDayDay   = "day"
	TimeOfDayNight = "night"
)

// Item is a single candidate or selected packing item. Weight and volume are
// totals for the whole quantity.
type Item struct {
	Name              string       `json:"name"`
	Category          Category     `json:"category"`
	Quantity          int          `json:"quantity"`
	EstimatedWeightG  int          `json:"estimated_weight_g"`
	EstimatedVolumeML int          `json:"estimated_volume_ml"`
	SafetyStatus      SafetyStatus `json:"safety_status"`
	Priority          Priority     `json:"priority"`
	WeightClass       WeightClass  `json:"weight_class"`
	Reason            string       `json:"reason"`
	Alternatives      []string     `json:"alternatives,omitempty"`
	Restrictions      string       `json:"restrictions,omitempty"`
	SourceRule        string       `json:"source_rule"`
}

// TripParameters describes the trip being packed for.
type TripParameters struct {
	Destination           string     `json:"destination"`
	DepartureDate         *time.Time `json:"departure_date,omitempty"`
	ReturnDate            *time.Time `json:"return_date,omitempty"`
	TripLengthDays        int        `json:"trip_length_days"`
	Activities            []Activity `json:"activities,omitempty"`
	TimeOfDay             []string   `json:"time_of_day,omitempty"`
	AccommodationType     string     `json:"accommodation_type,omitempty"`
	TransportationMethods []string   `json:"transportation_methods,omitempty"`
}

// Constraints holds the traveller's luggage limits and rule switches.
// Nil ceilings mean unconstrained. A zero ceiling is enforced, so
// capacity_liters: 0 keeps only items with no volume.
type Constraints struct {
	CapacityLiters     *float64 `json:"capacity_liters,omitempty"`
	MaxWeightKg        *float64 `json:"max_weight_kg,omitempty"`
	Airline            string   `json:"airline,omitempty"`
	CabinClass         string   `json:"cabin_class,omitempty"`
	RouteType          string   `json:"route_type,omitempty"`
	HasLaundryAccess   bool     `json:"has_laundry_access"`
	LiquidRestrictions bool     `json:"liquid_restrictions"`
}

// DefaultConstraints returns unconstrained economy international travel with
// the 3-1-1 rule enabled.
func DefaultConstraints() Constraints {
	return Constraints{
		CabinClass:         "economy",
		RouteType:          "international",
		LiquidRestrictions: true,
	}
}

// Temperatures assumed when a forecast omits them; neither triggers hot or
// cold gear.
const (
	DefaultTemperatureMinC = 15.0
	DefaultTemperatureMaxC = 25.0
)

// WeatherForecast is the caller-resolved forecast for the destination.
// Nil temperatures fall back to DefaultTemperatureMinC and DefaultTemperatureMaxC.
type WeatherForecast struct {
	Location                 string      `json:"location,omitempty"`
	Conditions               []Condition `json:"conditions,omitempty"`
	TemperatureMinC          *float64    `json:"temperature_min_c,omitempty"`
	TemperatureMaxC          *float64    `json:"temperature_max_c,omitempty"`
	PrecipitationProbability float64     `json:"precipitation_probability"`
}

// MinC returns the forecast minimum or its default.
func (w WeatherForecast) MinC() float64 {
	if w.TemperatureMinC == nil {
		return DefaultTemperatureMinC
	}
	return *w.TemperatureMinC
}

// MaxC returns the forecast maximum or its default.
func (w WeatherForecast) MaxC() float64 {
	if w.TemperatureMaxC == nil {
		return DefaultTemperatureMaxC
	}
	return *w.TemperatureMaxC
}

// Request bundles everything one generation call needs.
type Request struct {
	Trip         TripParameters   `json:"trip_parameters"`
	Constraints  Constraints      `json:"constraints"`
	Weather      *WeatherForecast `json:"weather_forecast,omitempty"`
	ExtraItems   []Item           `json:"extra_items,omitempty"`
	KeepItSimple bool             `json:"keep_it_simple,omitempty"`
}

// Response is the generated packing list with its analysis.
type Response struct {
	Items                  []Item                       `json:"items"`
	TotalEstimatedWeightG  int                          `json:"total_estimated_weight_g"`
	TotalEstimatedVolumeML int                          `json:"total_estimated_volume_ml"`
	FitsConstraints        bool                         `json:"fits_constraints"`
	ConstraintViolations   []string                     `json:"constraint_violations"`
	CategorySummaries      map[Category]CategorySummary `json:"category_summaries"`
	CapacityAnalysis       *CapacityAnalysis            `json:"capacity_analysis,omitempty"`
	GenerationMode         string                       `json:"generation_mode"`
}

// CategorySummary aggregates the items of one category.
type CategorySummary struct {
	ItemCount                int                  `json:"item_count"`
	TotalWeightG             int                  `json:"total_weight_g"`
	TotalVolumeML            int                  `json:"total_volume_ml"`
	PriorityDistribution     map[Priority]int     `json:"priorities"`
	SafetyStatusDistribution map[SafetyStatus]int `json:"safety_statuses"`
}

// CapacityAnalysis reports how much of each ceiling the selection uses.
type CapacityAnalysis struct {
	CapacityUsedPercent float64  `json:"total_capacity_used_percent"`
	WeightUsedPercent   float64  `json:"total_weight_used_percent"`
	SuggestedRemovals   []string `json:"suggested_removals,omitempty"`
}

// SimpleItem is a checklist line in keep-it-simple mode.
type SimpleItem struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Category  Category `json:"category"`
	Essential bool     `json:"essential"`
}

// SimpleChecklist is the minimal keep-it-simple output.
type SimpleChecklist struct {
	Destination       string       `json:"destination"`
	TripLengthDays    int          `json:"trip_length_days"`
	Items             []SimpleItem `json:"items"`
	HighPriorityNotes []string     `json:"high_priority_notes"`
}

// Engine generates packing lists.
type Engine interface {
	Generate(req Request) (Response, error)
	Checklist(req Request) (SimpleChecklist, error)
}
