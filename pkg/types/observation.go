// Package types provides core data types for Aquatel.
package types

import "fmt"

// TimeOfDay is the part of the day a measurement was taken.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// TimesOfDay lists the valid TimeOfDay values in generation order.
var TimesOfDay = []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening, TimeNight}

// Season is the season a measurement falls in.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// Seasons lists the valid Season values in generation order.
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// DayOfWeek distinguishes weekday from weekend measurements.
type DayOfWeek string

const (
	DayWeekday DayOfWeek = "weekday"
	DayWeekend DayOfWeek = "weekend"
)

// DaysOfWeek lists the valid DayOfWeek values in generation order.
var DaysOfWeek = []DayOfWeek{DayWeekday, DayWeekend}

// Observation represents a single synthetic water-usage measurement
// destined for the water_consumption_data table. Field order matches the
// column order of the target table.
type Observation struct {
	// TimeOfDay is the part of the day the measurement was taken
	TimeOfDay TimeOfDay `json:"time_of_day"`

	// Season is the season of the measurement
	Season Season `json:"season"`

	// Temperature is the ambient temperature in degrees Celsius
	Temperature float64 `json:"temperature"`

	// HouseholdSize is the number of residents, between 1 and 5
	HouseholdSize int `json:"household_size"`

	// DayOfWeek is weekday or weekend
	DayOfWeek DayOfWeek `json:"day_of_week"`

	// WaterConsumption is the consumption in liters derived from
	// household size plus noise
	WaterConsumption float64 `json:"water_consumption"`

	// IsAnomaly is 1 when the record was flagged as anomalous, else 0
	IsAnomaly int `json:"is_anomaly"`
}

// Validate checks that every field is within its documented domain.
func (o *Observation) Validate() error {
	switch o.TimeOfDay {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeNight:
	default:
		return fmt.Errorf("invalid time_of_day: %q", o.TimeOfDay)
	}

	switch o.Season {
	case SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter:
	default:
		return fmt.Errorf("invalid season: %q", o.Season)
	}

	if o.HouseholdSize < 1 || o.HouseholdSize > 5 {
		return fmt.Errorf("household_size must be between 1 and 5, got %d", o.HouseholdSize)
	}

	switch o.DayOfWeek {
	case DayWeekday, DayWeekend:
	default:
		return fmt.Errorf("invalid day_of_week: %q", o.DayOfWeek)
	}

	if o.IsAnomaly != 0 && o.IsAnomaly != 1 {
		return fmt.Errorf("is_anomaly must be 0 or 1, got %d", o.IsAnomaly)
	}

	return nil
}
