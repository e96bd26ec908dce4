package automation

import (
	"regexp"
	"strconv"
)

var paginationRegex = regexp.MustCompile(`(?i)page\s+(\d+)\s+of\s+(\d+)`)

// ParsePagination reads "Page <n> of <m>". ok is false when text does not
// carry a usable indicator.
func ParsePagination(text string) (current, max int, ok bool) {
	m := paginationRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	current, err1 := strconv.Atoi(m[1])
	max, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || current < 1 || max < 1 {
		return 0, 0, false
	}
	return current, max, true
}
