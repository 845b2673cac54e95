package models

import (
	"fmt"
	"time"
)

// ReviewSource identifies which surface produced a review.
type ReviewSource string

const (
	ReviewSourceCLI ReviewSource = "cli"
	ReviewSourceAPI ReviewSource = "api"
	ReviewSourceMCP ReviewSource = "mcp"
)

// Valid reports whether s is one of the known sources.
func (s ReviewSource) Valid() bool {
	switch s {
	case ReviewSourceCLI, ReviewSourceAPI, ReviewSourceMCP:
		return true
	}
	return false
}

// ParseSourceFilter validates a history source filter. The empty string
// matches every source.
func ParseSourceFilter(s string) (ReviewSource, error) {
	src := ReviewSource(s)
	if src != "" && !src.Valid() {
		return "", fmt.Errorf("invalid source %q: must be cli, api, or mcp", s)
	}
	return src, nil
}

// Review records a single successful year review.
type Review struct {
	ID        string
	Year      int64
	Result    string
	Special   bool // result is the fixed review for Year
	Source    ReviewSource
	CreatedAt time.Time
}

// ResultCount is the number of times a review result has been given.
type ResultCount struct {
	Result  string
	Special bool
	Count   int
}
