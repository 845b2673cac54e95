package reviewer

import "strconv"

// Year is a calendar year that can review itself.
type Year int

// Review returns the review for y using the package default Reviewer.
func (y Year) Review() (string, error) {
	return std.Review(int(y))
}

// Special reports whether y has a fixed review.
func (y Year) Special() bool { return IsSpecial(int(y)) }

func (y Year) String() string { return strconv.Itoa(int(y)) }
