package reviewer

import (
	"errors"
	"fmt"
)

// Kind classifies a review failure.
type Kind int

const (
	// UnknownKind is returned by KindOf for errors that did not come from a review.
	UnknownKind Kind = iota
	// TypeKind means the year was not an integer.
	TypeKind
	// RangeKind means the year is after Present.
	RangeKind
)

func (k Kind) String() string {
	switch k {
	case TypeKind:
		return "type_error"
	case RangeKind:
		return "range_error"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by TypeError and RangeError via errors.Is.
var (
	ErrType  = errors.New("year is not an integer")
	ErrRange = errors.New("year is in the future")
)

// TypeError is returned when the value under review is not an integer.
type TypeError struct {
	Got string
}

func (err *TypeError) Error() string {
	return fmt.Sprintf("Expected int, received %s", err.Got)
}

// Kind returns TypeKind.
func (err *TypeError) Kind() Kind { return TypeKind }

func (err *TypeError) Is(target error) bool { return target == ErrType }

// RangeError is returned when the year has not happened yet.
type RangeError struct {
	Year    int64
	Present int
}

func (err *RangeError) Error() string {
	return fmt.Sprintf("Can't review a year that has not happened yet (year > %d)", err.Present)
}

// Kind returns RangeKind.
func (err *RangeError) Kind() Kind { return RangeKind }

func (err *RangeError) Is(target error) bool { return target == ErrRange }

// KindOf reports the failure kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return UnknownKind
}
