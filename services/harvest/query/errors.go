package query

import (
	"errors"
	"fmt"
)

// ErrValidation matches every validation error via errors.Is. Callers that
// want the details should errors.As against the concrete types below.
var ErrValidation = errors.New("invalid query parameters")

type UnknownParameterError struct {
	Key string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q: only option, year and sub_option are accepted", e.Key)
}

func (e *UnknownParameterError) Is(target error) bool { return target == ErrValidation }

type InvalidOptionError struct {
	Given   string
	Allowed []Option
}

func (e *InvalidOptionError) Error() string {
	if e.Given == "" {
		return fmt.Sprintf("option is required, choose one of %v", e.Allowed)
	}
	return fmt.Sprintf("invalid option %q, choose one of %v", e.Given, e.Allowed)
}

func (e *InvalidOptionError) Is(target error) bool { return target == ErrValidation }

type InvalidYearError struct {
	Given string
}

func (e *InvalidYearError) Error() string {
	return fmt.Sprintf("invalid year %q: only integers are accepted", e.Given)
}

func (e *InvalidYearError) Is(target error) bool { return target == ErrValidation }

type YearOutOfRangeError struct {
	Option   Option
	Year     int
	Min, Max int
}

func (e *YearOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"year %d is out of range for option %q: must be between %d and %d",
		e.Year, e.Option, e.Min, e.Max,
	)
}

func (e *YearOutOfRangeError) Is(target error) bool { return target == ErrValidation }

type SubOptionNotAllowedError struct {
	Option Option
}

func (e *SubOptionNotAllowedError) Error() string {
	return fmt.Sprintf("sub_option is not allowed when option is %q", e.Option)
}

func (e *SubOptionNotAllowedError) Is(target error) bool { return target == ErrValidation }

type InvalidSubOptionError struct {
	Option  Option
	Given   string
	Allowed []string
}

func (e *InvalidSubOptionError) Error() string {
	return fmt.Sprintf(
		"invalid sub_option %q for option %q, choose one of %v",
		e.Given, e.Option, e.Allowed,
	)
}

func (e *InvalidSubOptionError) Is(target error) bool { return target == ErrValidation }
