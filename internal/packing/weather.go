package packing

import "slices"

const (
	hotThresholdC            = 25.0
	coldThresholdC           = 10.0
	rainProbabilityThreshold = 0.3
)

// adaptForWeather appends weather gear to a copy of items. A nil forecast
// leaves the list unchanged. Hot and cold sets may both fire.
func adaptForWeather(items []Item, weather *WeatherForecast) []Item {
	out := slices.Clone(items)
	if weather == nil {
		return out
	}

	if weather.MaxC() > hotThresholdC {
		out = appendEntries(out, hotWeatherItems, "hot_weather_adaptation")
	}
	if weather.MinC() < coldThresholdC {
		out = appendEntries(out, coldWeatherItems, "cold_weather_adaptation")
	}
	if isRainy(weather) {
		out = appendEntries(out, rainItems, "rain_weather_adaptation")
	}
	return out
}

func isRainy(weather *WeatherForecast) bool {
	return weather.PrecipitationProbability > rainProbabilityThreshold ||
		slices.Contains(weather.Conditions, ConditionRainy)
}

func appendEntries(items []Item, entries []catalogEntry, sourceRule string) []Item {
	for _, entry := range entries {
		items = append(items, entry.item(1, entry.reason, sourceRule))
	}
	return items
}
