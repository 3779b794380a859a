package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/packing-assistant/internal/logging"
	"github.com/eugenenazirov/packing-assistant/internal/packing"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	destination    *string
	days           *int
	activities     *[]string
	night          *bool
	laundry        *bool
	noLiquidRules  *bool
	capacityLiters *float64
	maxWeightKg    *float64
	tempMin        *float64
	tempMax        *float64
	precipitation  *float64
	conditions     *[]string
	simple         *bool
	output         *string
	logLevel       *string

	capacitySet bool
	weightSet   bool
	tempMinSet  bool
	tempMaxSet  bool
	weatherSet  bool
}

func run(args []string, stdout, stderr io.Writer) int {
	app := kingpinApp(stderr)
	opts := registerFlags(app)
	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "packlist: %v\n", err)
		return exitValidation
	}

	logger, err := logging.New(*opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "packlist: %v\n", err)
		return exitValidation
	}
	defer func() {
		_ = logger.Sync()
	}()

	req := opts.request()
	engine := packing.New()

	var out any
	if *opts.simple {
		out, err = engine.Checklist(req)
	} else {
		out, err = engine.Generate(req)
	}
	if err != nil {
		logger.Error("packing list generation failed",
			zap.String("destination", req.Trip.Destination),
			zap.Int("trip_length_days", req.Trip.TripLengthDays),
			zap.Error(err),
		)
		fmt.Fprintf(stderr, "packlist: %v\n", err)
		if isValidationError(err) {
			return exitValidation
		}
		return exitFailure
	}

	if err := render(stdout, *opts.output, out); err != nil {
		fmt.Fprintf(stderr, "packlist: write output: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func kingpinApp(stderr io.Writer) *kingpin.Application {
	app := kingpin.New("packlist", "Generate a travel packing list that fits your luggage")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	return app
}

func registerFlags(app *kingpin.Application) *options {
	activities := make([]string, 0, 8)
	for _, a := range []packing.Activity{
		packing.ActivityBusiness, packing.ActivityCasual, packing.ActivityOutdoor, packing.ActivityBeach,
		packing.ActivityFormal, packing.ActivityHiking, packing.ActivityCultural, packing.ActivityNightlife,
	} {
		activities = append(activities, string(a))
	}
	conditions := make([]string, 0, 7)
	for _, c := range []packing.Condition{
		packing.ConditionHot, packing.ConditionWarm, packing.ConditionCool, packing.ConditionCold,
		packing.ConditionRainy, packing.ConditionSnowy, packing.ConditionWindy,
	} {
		conditions = append(conditions, string(c))
	}

	opts := &options{}
	opts.destination = app.Flag("destination", "Trip destination").Short('d').String()
	opts.days = app.Flag("days", "Trip length in days").Short('n').Int()
	opts.activities = app.Flag("activity", "Planned activity (repeatable)").Short('a').Enums(activities...)
	opts.night = app.Flag("night", "Trip includes nights out").Bool()
	opts.laundry = app.Flag("laundry", "Laundry is available at the destination").Bool()
	opts.noLiquidRules = app.Flag("no-liquid-restrictions", "Disable the 100 ml carry-on liquid rule").Bool()
	opts.capacityLiters = app.Flag("capacity-liters", "Luggage capacity in liters").IsSetByUser(&opts.capacitySet).Float64()
	opts.maxWeightKg = app.Flag("max-weight-kg", "Luggage weight limit in kilograms").IsSetByUser(&opts.weightSet).Float64()
	opts.tempMin = app.Flag("temp-min", "Forecast minimum temperature in Celsius").IsSetByUser(&opts.tempMinSet).Float64()
	opts.tempMax = app.Flag("temp-max", "Forecast maximum temperature in Celsius").IsSetByUser(&opts.tempMaxSet).Float64()
	opts.precipitation = app.Flag("precipitation", "Forecast precipitation probability between 0 and 1").IsSetByUser(&opts.weatherSet).Float64()
	opts.conditions = app.Flag("condition", "Forecast weather condition (repeatable)").IsSetByUser(&opts.weatherSet).Enums(conditions...)
	opts.simple = app.Flag("simple", "Print a minimal essentials checklist").Bool()
	opts.output = app.Flag("output", "Output format").Short('o').Default("text").Enum("text", "json")
	opts.logLevel = app.Flag("log-level", "Log level for diagnostics written to stderr").Default("warn").String()
	return opts
}

func (o *options) request() packing.Request {
	trip := packing.TripParameters{
		Destination:    *o.destination,
		TripLengthDays: *o.days,
		TimeOfDay:      []string{packing.TimeOfDayDay},
	}
	for _, a := range *o.activities {
		trip.Activities = append(trip.Activities, packing.Activity(a))
	}
	if *o.night {
		trip.TimeOfDay = append(trip.TimeOfDay, packing.TimeOfDayNight)
	}

	constraints := packing.DefaultConstraints()
	constraints.HasLaundryAccess = *o.laundry
	constraints.LiquidRestrictions = !*o.noLiquidRules
	if o.capacitySet {
		constraints.CapacityLiters = o.capacityLiters
	}
	if o.weightSet {
		constraints.MaxWeightKg = o.maxWeightKg
	}

	req := packing.Request{
		Trip:         trip,
		Constraints:  constraints,
		KeepItSimple: *o.simple,
	}
	if o.weatherSet || o.tempMinSet || o.tempMaxSet {
		forecast := &packing.WeatherForecast{
			Location:                 *o.destination,
			PrecipitationProbability: *o.precipitation,
		}
		if o.tempMinSet {
			forecast.TemperatureMinC = o.tempMin
		}
		if o.tempMaxSet {
			forecast.TemperatureMaxC = o.tempMax
		}
		for _, c := range *o.conditions {
			forecast.Conditions = append(forecast.Conditions, packing.Condition(c))
		}
		req.Weather = forecast
	}
	return req
}

func isValidationError(err error) bool {
	for _, target := range []error{
		packing.ErrInvalidDestination,
		packing.ErrInvalidTripLength,
		packing.ErrInvalidConstraints,
		packing.ErrInvalidItem,
		packing.ErrInvalidTuning,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func render(w io.Writer, format string, out any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch v := out.(type) {
	case packing.Response:
		return renderResponse(w, v)
	case packing.SimpleChecklist:
		return renderChecklist(w, v)
	default:
		return fmt.Errorf("unsupported output %T", out)
	}
}

func renderResponse(w io.Writer, res packing.Response) error {
	var b strings.Builder

	byCategory := make(map[packing.Category][]packing.Item)
	for _, item := range res.Items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	for _, c := range categories {
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(strings.ReplaceAll(c, "_", " ")))
		for _, item := range byCategory[packing.Category(c)] {
			fmt.Fprintf(&b, "  [ ] %-32s x%-3d %6d g %6d ml  %s", item.Name, item.Quantity, item.EstimatedWeightG, item.EstimatedVolumeML, item.Priority)
			if item.SafetyStatus != packing.SafetySafe {
				fmt.Fprintf(&b, " (%s)", item.SafetyStatus)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nTotal: %d items, %.2f kg, %.1f L\n", len(res.Items),
		float64(res.TotalEstimatedWeightG)/1000, float64(res.TotalEstimatedVolumeML)/1000)
	if res.FitsConstraints {
		b.WriteString("Fits constraints: yes\n")
	} else {
		b.WriteString("Fits constraints: no\n")
		for _, v := range res.ConstraintViolations {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
	}
	if ca := res.CapacityAnalysis; ca != nil {
		fmt.Fprintf(&b, "Capacity used: %.1f%%, weight used: %.1f%%\n", ca.CapacityUsedPercent, ca.WeightUsedPercent)
		if len(ca.SuggestedRemovals) > 0 {
			fmt.Fprintf(&b, "Left out: %s\n", strings.Join(ca.SuggestedRemovals, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderChecklist(w io.Writer, list packing.SimpleChecklist) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Essentials for %s (%d days)\n", list.Destination, list.TripLengthDays)
	for _, item := range list.Items {
		fmt.Fprintf(&b, "  [ ] %s x%d\n", item.Name, item.Quantity)
	}
	if len(list.HighPriorityNotes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range list.HighPriorityNotes {
			fmt.Fprintf(&b, "  * %s\n", note)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
