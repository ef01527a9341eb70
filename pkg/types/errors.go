package types

import "errors"

// Chart id errors
var (
	// ErrEmptyChartID is returned when a chart id is blank
	ErrEmptyChartID = errors.New("chart id is empty")

	// ErrChartIDTooLong is returned when a chart id exceeds MaxChartIDLength
	ErrChartIDTooLong = errors.New("chart id is too long")

	// ErrInvalidChartIDCharacter is returned when a chart id contains characters outside [A-Za-z0-9_-]
	ErrInvalidChartIDCharacter = errors.New("invalid chart id character")
)

// Value errors
var (
	// ErrUnsupportedValue is returned when a row value is not a string, number or date
	ErrUnsupportedValue = errors.New("expected string, number or date")

	// ErrNonFiniteNumber is returned when a numeric value is NaN or infinite
	ErrNonFiniteNumber = errors.New("number must be finite")
)
