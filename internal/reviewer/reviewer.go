// Package reviewer maps calendar years to short reviews.
//
// A handful of years have fixed reviews. Every other year up to Present gets
// a pick from a small pool of default reviews. Years after Present cannot be
// reviewed, and values that are not integers are rejected.
package reviewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Present is the last year that can be reviewed.
const Present = 2021

var defaults = [...]string{"Meh", "Boring", "What about it?", "Nothing special"}

var specials = map[int64]string{
	0:    "Jesus Christ what a year!",
	42:   "A year worth living for",
	1337: ":sunglasses:",
	1984: "You never felt alone",
	1987: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	2020: "Sad year :(",
}

// Defaults returns the pool of reviews used for years without a fixed review.
func Defaults() []string {
	out := make([]string, len(defaults))
	copy(out, defaults[:])
	return out
}

// Specials returns the years that have a fixed review.
func Specials() map[int]string {
	out := make(map[int]string, len(specials))
	for y, s := range specials {
		out[int(y)] = s
	}
	return out
}

// IsSpecial reports whether year has a fixed review.
func IsSpecial(year int) bool {
	_, ok := specials[int64(year)]
	return ok
}

// IsDefault reports whether s is one of the default reviews.
func IsDefault(s string) bool {
	for _, d := range defaults {
		if d == s {
			return true
		}
	}
	return false
}

// Result is the outcome of a successful review.
type Result struct {
	Year    int64  `json:"year"`
	Text    string `json:"review"`
	Special bool   `json:"special"`
}

// Reviewer reviews years. The zero value is not usable; call New.
type Reviewer struct {
	pick func(n int) int
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithPicker sets the function used to choose a default review. It is called
// with the pool size and must return an index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Reviewer) {
		r.pick = pick
	}
}

// New returns a Reviewer. Without options it picks default reviews with
// math/rand/v2, which is safe for concurrent use.
func New(opts ...Option) *Reviewer {
	r := &Reviewer{pick: rand.IntN}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Review returns the review for year.
func (r *Reviewer) Review(year int) (string, error) {
	res, err := r.evaluate(int64(year))
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ReviewValue reviews a dynamically typed value. Any Go integer type and
// json.Number literals without a fraction or exponent are integers; every
// other type, including bool and float64, fails with a *TypeError.
func (r *Reviewer) ReviewValue(v any) (string, error) {
	res, err := r.Evaluate(v)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Evaluate is like ReviewValue but also reports whether the review was fixed.
func (r *Reviewer) Evaluate(v any) (Result, error) {
	year, err := toYear(v)
	if err != nil {
		return Result{}, err
	}
	return r.evaluate(year)
}

func (r *Reviewer) evaluate(year int64) (Result, error) {
	if year > Present {
		return Result{}, &RangeError{Year: year, Present: Present}
	}
	if s, ok := specials[year]; ok {
		return Result{Year: year, Text: s, Special: true}, nil
	}
	return Result{Year: year, Text: defaults[r.pick(len(defaults))]}, nil
}

func toYear(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return fromUint(x)
	case Year:
		return int64(x), nil
	case json.Number:
		return fromNumber(x)
	default:
		return 0, &TypeError{Got: typeName(v)}
	}
}

func fromUint(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, &RangeError{Year: math.MaxInt64, Present: Present}
	}
	return int64(u), nil
}

func fromNumber(n json.Number) (int64, error) {
	i, err := n.Int64()
	if err == nil {
		return i, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return clamp(n.String()), nil
	}
	return 0, &TypeError{Got: "float"}
}

// clamp maps an integer literal that overflows int64 to the nearest bound.
// Both bounds review the same way as the literal would.
func clamp(s string) int64 {
	if strings.HasPrefix(s, "-") {
		return math.MinInt64
	}
	return math.MaxInt64
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// ParseYear parses text as a year. Text that is not a base-10 integer fails
// with a *TypeError, and integers after Present fail with a *RangeError.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	year, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		year, err = clamp(s), nil
	}
	if err != nil {
		if _, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return 0, &TypeError{Got: "float"}
		}
		return 0, &TypeError{Got: "string"}
	}
	if year > Present {
		return 0, &RangeError{Year: year, Present: Present}
	}
	if year < math.MinInt {
		year = math.MinInt
	}
	return int(year), nil
}

var std = New()

// Review returns the review for year using the package default Reviewer.
func Review(year int) (string, error) {
	return std.Review(year)
}

// ReviewValue reviews v using the package default Reviewer.
func ReviewValue(v any) (string, error) {
	return std.ReviewValue(v)
}

// Evaluate reviews v using the package default Reviewer.
func Evaluate(v any) (Result, error) {
	return std.Evaluate(v)
}
