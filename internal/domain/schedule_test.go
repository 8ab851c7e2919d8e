package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRate(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		unit          TimeUnit
		expected      Rate
		expectedError bool
	}{
		{name: "plural", amount: "5", unit: UnitMinutes, expected: Rate{Amount: 5, Unit: UnitMinutes}},
		{name: "singularized for one", amount: "1", unit: UnitHours, expected: Rate{Amount: 1, Unit: UnitHour}},
		{name: "surrounding spaces", amount: " 2 ", unit: UnitHours, expected: Rate{Amount: 2, Unit: UnitHours}},
		{name: "zero", amount: "0", unit: UnitHours, expectedError: true},
		{name: "negative", amount: "-3", unit: UnitHours, expectedError: true},
		{name: "letters", amount: "five", unit: UnitHours, expectedError: true},
		{name: "decimal", amount: "1.5", unit: UnitHours, expectedError: true},
		{name: "empty", amount: "", unit: UnitHours, expectedError: true},
		{name: "longest minutes", amount: "43200", unit: UnitMinutes, expected: Rate{Amount: 43200, Unit: UnitMinutes}},
		{name: "longest hours", amount: "720", unit: UnitHours, expected: Rate{Amount: 720, Unit: UnitHours}},
		{name: "minutes over a month", amount: "43201", unit: UnitMinutes, expectedError: true},
		{name: "hours over a month", amount: "721", unit: UnitHours, expectedError: true},
		{name: "huge amount", amount: "200000000", unit: UnitMinutes, expectedError: true},
		{name: "beyond int range", amount: "99999999999999999999", unit: UnitHours, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := NewRate(tt.amount, tt.unit)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, rate)
			}
		})
	}
}

func TestParseTimeUnit(t *testing.T) {
	tests := []struct {
		input         string
		expected      TimeUnit
		expectedError bool
	}{
		{input: "minutes", expected: UnitMinutes},
		{input: "hour", expected: UnitHours},
		{input: "Hours", expected: UnitHours},
		{input: "days", expectedError: true},
		{input: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			unit, err := ParseTimeUnit(tt.input)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, unit)
			}
		})
	}
}

func TestRate_Interval(t *testing.T) {
	assert.Equal(t, 90*time.Minute, Rate{Amount: 90, Unit: UnitMinutes}.Interval())
	assert.Equal(t, time.Hour, DefaultRate.Interval())
	assert.Equal(t, "1 hour", DefaultRate.String())
	assert.Equal(t, MaxInterval, Rate{Amount: 720, Unit: UnitHours}.Interval())
}

func TestQuietHours_Contains(t *testing.T) {
	night := QuietHours{Start: 23, End: 7, Location: time.UTC}
	day := QuietHours{Start: 12, End: 14, Location: time.UTC}

	at := func(hour int) time.Time {
		return time.Date(2024, 5, 1, hour, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		window   QuietHours
		time     time.Time
		expected bool
	}{
		{name: "before midnight", window: night, time: at(23), expected: true},
		{name: "after midnight", window: night, time: at(3), expected: true},
		{name: "end is exclusive", window: night, time: at(7), expected: false},
		{name: "evening", window: night, time: at(22), expected: false},
		{name: "inside non-wrapping", window: day, time: at(13), expected: true},
		{name: "outside non-wrapping", window: day, time: at(14), expected: false},
		{name: "empty window", window: QuietHours{Start: 5, End: 5}, time: at(5), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.window.Contains(tt.time))
		})
	}
}
