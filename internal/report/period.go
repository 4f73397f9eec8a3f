// Package report computes per-conversation totals over civil-date windows.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/edgard/paybot/internal/ledger"
)

// ErrInvalidPeriod is returned for unrecognized period keywords.
var ErrInvalidPeriod = errors.New("invalid period")

// Period names an aggregation window ending at the current civil date.
type Period string

const (
	Today     Period = "today"
	ThisWeek  Period = "this_week"
	ThisMonth Period = "this_month"
	ThisYear  Period = "this_year"
	// AllTime selects the full history; it is valid for exports.
	AllTime Period = "all"
)

var periodAliases = map[string]Period{
	"today":      Today,
	"total":      Today,
	"day":        Today,
	"this_week":  ThisWeek,
	"week":       ThisWeek,
	"this_month": ThisMonth,
	"month":      ThisMonth,
	"this_year":  ThisYear,
	"year":       ThisYear,
	"all":        AllTime,
}

// ParsePeriod resolves a period keyword or one of its aliases, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case Today, ThisWeek, ThisMonth, ThisYear, AllTime:
		return true
	}
	return false
}

// Label is the human-readable name.
func (p Period) Label() string {
	switch p {
	case Today:
		return "Today"
	case ThisWeek:
		return "This Week"
	case ThisMonth:
		return "This Month"
	case ThisYear:
		return "This Year"
	case AllTime:
		return "All Time"
	}
	return string(p)
}

// Short is the compact keyword used in file names.
func (p Period) Short() string {
	return strings.TrimPrefix(string(p), "this_")
}

// Window returns the inclusive civil-date range p covers when the current
// date is today. Weeks start on Monday. AllTime has no window and reports
// false.
func Window(today civil.Date, p Period) (ledger.DateRange, bool) {
	switch p {
	case Today:
		return ledger.SingleDay(today), true
	case ThisWeek:
		// time.Weekday counts from Sunday; shift so Monday is zero.
		offset := (int(today.In(time.UTC).Weekday()) + 6) % 7
		return ledger.DateRange{Start: today.AddDays(-offset), End: today}, true
	case ThisMonth:
		return ledger.DateRange{Start: civil.Date{Year: today.Year, Month: today.Month, Day: 1}, End: today}, true
	case ThisYear:
		return ledger.DateRange{Start: civil.Date{Year: today.Year, Month: 1, Day: 1}, End: today}, true
	}
	return ledger.DateRange{}, false
}
