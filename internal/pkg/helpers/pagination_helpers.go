package helpers

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 9
	MaxPageSize     = 50
	DefaultPage     = 1 // Default page is 1-based
)

// ParsePage reads a 1-based page number. Missing or non-numeric input yields
// DefaultPage and anything below 1 is raised to 1. Numbers too large for an
// int saturate at math.MaxInt.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && page > 0 {
			return math.MaxInt
		}
		return DefaultPage
	}
	if page < 1 {
		return 1
	}
	return page
}

// ParsePageSize reads a page size. Missing or non-numeric input yields
// DefaultPageSize; numbers are clamped into [1, MaxPageSize].
func ParsePageSize(raw string) int {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPageSize
	}
	if size < 1 {
		return 1
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// MaxOffset is the largest OFFSET Postgres accepts (BIGINT).
const MaxOffset = uint64(math.MaxInt64)

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
// Offsets past MaxOffset saturate, so a far-away page is simply empty.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	skipped, perPage := uint64(page-1), uint64(size)
	if skipped > MaxOffset/perPage {
		return MaxOffset, perPage
	}
	return skipped * perPage, perPage
}
