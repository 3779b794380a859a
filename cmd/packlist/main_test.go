package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/eugenenazirov/packing-assistant/internal/packing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPrintsTextList(t *testing.T) {
	code, out, errOut := runCLI(t, "--destination", "Chamonix", "--days", "5", "--activity", "hiking")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	for _, want := range []string{"CLOTHING", "hiking boots", "Total:", "Fits constraints: yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunPrintsJSON(t *testing.T) {
	code, out, errOut := runCLI(t,
		"--destination", "Chamonix", "--days", "5", "--activity", "hiking",
		"--capacity-liters", "1", "--output", "json",
	)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}

	var resp packing.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if resp.FitsConstraints {
		t.Fatalf("expected a 1L bag not to fit")
	}
	if resp.TotalEstimatedVolumeML > 1000 {
		t.Fatalf("selected volume %d exceeds capacity", resp.TotalEstimatedVolumeML)
	}
	if resp.CapacityAnalysis == nil {
		t.Fatalf("expected capacity analysis when a ceiling is set")
	}
}

func TestRunSimpleChecklistWithWeather(t *testing.T) {
	code, out, errOut := runCLI(t,
		"--destination", "Lisbon", "--days", "1", "--activity", "beach",
		"--precipitation", "0.8", "--condition", "rainy", "--simple",
	)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	for _, want := range []string{"Essentials for Lisbon (1 days)", "underwear", "Rain is likely"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunPrecipitationOnlyKeepsTemperatureDefaults(t *testing.T) {
	code, out, errOut := runCLI(t,
		"--destination", "Lisbon", "--days", "4", "--precipitation", "0.8", "--output", "json",
	)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}

	var resp packing.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	names := make(map[string]bool, len(resp.Items))
	for _, item := range resp.Items {
		names[item.Name] = true
	}
	if !names["umbrella"] {
		t.Fatalf("expected rain gear for a 0.8 precipitation forecast")
	}
	for _, name := range []string{"warm jacket", "gloves", "sunscreen"} {
		if names[name] {
			t.Fatalf("did not expect %s without temperatures", name)
		}
	}
}

func TestRunValidationErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"missing destination", []string{"--days", "3"}},
		{"zero days", []string{"--destination", "Oslo", "--days", "0"}},
		{"negative capacity", []string{"--destination", "Oslo", "--days", "3", "--capacity-liters=-1"}},
		{"precipitation out of range", []string{"--destination", "Oslo", "--days", "3", "--precipitation", "1.5"}},
		{"unknown activity", []string{"--destination", "Oslo", "--days", "3", "--activity", "skydiving"}},
		{"unknown output", []string{"--destination", "Oslo", "--days", "3", "--output", "xml"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tc.args...)
			if code != exitValidation {
				t.Fatalf("expected exit %d, got %d", exitValidation, code)
			}
			if out != "" {
				t.Fatalf("expected no stdout, got %q", out)
			}
			if !strings.Contains(errOut, "packlist:") {
				t.Fatalf("expected error on stderr, got %q", errOut)
			}
		})
	}
}

func TestRequestFromFlags(t *testing.T) {
	app := newTestApp(t, "--destination", "Oslo", "--days", "4", "--night", "--laundry",
		"--no-liquid-restrictions", "--max-weight-kg", "7", "--activity", "business", "--activity", "formal")

	req := app.request()
	if req.Trip.Destination != "Oslo" || req.Trip.TripLengthDays != 4 {
		t.Fatalf("unexpected trip %+v", req.Trip)
	}
	if len(req.Trip.Activities) != 2 || req.Trip.Activities[1] != packing.ActivityFormal {
		t.Fatalf("unexpected activities %v", req.Trip.Activities)
	}
	if len(req.Trip.TimeOfDay) != 2 || req.Trip.TimeOfDay[1] != packing.TimeOfDayNight {
		t.Fatalf("expected night in time of day, got %v", req.Trip.TimeOfDay)
	}
	if !req.Constraints.HasLaundryAccess || req.Constraints.LiquidRestrictions {
		t.Fatalf("unexpected constraint switches %+v", req.Constraints)
	}
	if req.Constraints.CapacityLiters != nil {
		t.Fatalf("expected capacity to stay unset")
	}
	if req.Constraints.MaxWeightKg == nil || *req.Constraints.MaxWeightKg != 7 {
		t.Fatalf("expected weight ceiling of 7kg")
	}
	if req.Weather != nil {
		t.Fatalf("expected no forecast without weather flags")
	}

	req = newTestApp(t, "--destination", "Oslo", "--days", "4", "--temp-min=-3").request()
	if req.Weather == nil || req.Weather.TemperatureMinC == nil || *req.Weather.TemperatureMinC != -3 {
		t.Fatalf("expected minimum temperature from flags, got %+v", req.Weather)
	}
	if req.Weather.TemperatureMaxC != nil {
		t.Fatalf("expected maximum temperature to stay unset")
	}
}

func newTestApp(t *testing.T, args ...string) *options {
	t.Helper()

	var stderr bytes.Buffer
	app := kingpinApp(&stderr)
	opts := registerFlags(app)
	if _, err := app.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return opts
}
