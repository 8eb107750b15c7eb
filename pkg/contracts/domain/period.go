package domain

import (
	"fmt"
	"regexp"
	"time"
)

// periodPattern matches the canonical YYYY-MM period form.
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// PeriodOf formats a time as a YYYY-MM period string.
func PeriodOf(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ValidPeriod reports whether s is a well-formed YYYY-MM period string.
func ValidPeriod(s string) bool {
	return periodPattern.MatchString(s)
}
