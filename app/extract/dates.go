package extract

import (
	"regexp"
	"strconv"
	"time"
)

var isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// newTextRe compiles a case-insensitive pattern for scanning proposal text.
func newTextRe(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// norwegianMonths maps lowercase Norwegian month names to month numbers.
var norwegianMonths = map[string]int{
	"januar":    1,
	"februar":   2,
	"mars":      3,
	"april":     4,
	"mai":       5,
	"juni":      6,
	"juli":      7,
	"august":    8,
	"september": 9,
	"oktober":   10,
	"november":  11,
	"desember":  12,
}

// isValidDate reports whether the components form a real calendar date,
// including leap-year handling (Feb 29 of 2024 is valid, Feb 30 never is).
func isValidDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
