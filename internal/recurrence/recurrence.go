package recurrence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rule types as they appear in the stored JSON document.
const (
	TypeDaily   = "daily"
	TypeWeekly  = "weekly"
	TypeMonthly = "monthly"
	TypeYearly  = "yearly"
)

// ErrInvalidRecurrence marks an unparseable or unknown rule. It is fatal
// for the task carrying it, never for the whole cycle.
var ErrInvalidRecurrence = errors.New("invalid recurrence")

// Rule is a parsed recurrence document.
//
// DayOfWeek is 0..6 (Sunday = 0), DayOfMonth 1..31. Month is 0..11 on the
// wire and converted to 1..12 at parse time.
type Rule struct {
	Type       string `json:"type"`
	DayOfWeek  int    `json:"dayOfWeek"`
	DayOfMonth int    `json:"dayOfMonth"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
}

// Parse decodes and validates a recurrence JSON document.
func Parse(raw string) (Rule, error) {
	var rule Rule
	if err := json.Unmarshal([]byte(raw), &rule); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	rule.Type = strings.ToLower(strings.TrimSpace(rule.Type))

	switch rule.Type {
	case TypeDaily:
	case TypeWeekly:
		if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
			return Rule{}, fmt.Errorf("%w: dayOfWeek %d out of range", ErrInvalidRecurrence, rule.DayOfWeek)
		}
	case TypeMonthly:
		if rule.DayOfMonth < 1 || rule.DayOfMonth > 31 {
			return Rule{}, fmt.Errorf("%w: dayOfMonth %d out of range", ErrInvalidRecurrence, rule.DayOfMonth)
		}
	case TypeYearly:
		if rule.Month < 0 || rule.Month > 11 {
			return Rule{}, fmt.Errorf("%w: month %d out of range", ErrInvalidRecurrence, rule.Month)
		}
		if rule.Day < 1 || rule.Day > 31 {
			return Rule{}, fmt.Errorf("%w: day %d out of range", ErrInvalidRecurrence, rule.Day)
		}
		rule.Month++
	default:
		return Rule{}, fmt.Errorf("%w: unknown type %q", ErrInvalidRecurrence, rule.Type)
	}

	return rule, nil
}

// NextDue computes the next due date for the rule given "now". The date is
// derived from the calendar day of now's location and returned as midnight
// UTC of that calendar date, so every invocation during the same local day
// yields the same result.
func (r Rule) NextDue(now time.Time) (time.Time, error) {
	year, month, day := now.Date()

	switch r.Type {
	case TypeDaily:
		return asUTCDate(year, month, day), nil

	case TypeWeekly:
		ahead := (r.DayOfWeek - int(now.Weekday()) + 7) % 7
		due := now.AddDate(0, 0, ahead)
		y, m, d := due.Date()
		return asUTCDate(y, m, d), nil

	case TypeMonthly:
		if r.DayOfMonth == day {
			return asUTCDate(year, month, day), nil
		}
		targetMonth := month
		targetYear := year
		if r.DayOfMonth < day {
			targetMonth++
			if targetMonth > time.December {
				targetMonth = time.January
				targetYear++
			}
		}
		return asUTCDate(targetYear, targetMonth, clampDay(r.DayOfMonth, targetMonth, targetYear)), nil

	case TypeYearly:
		targetMonth := time.Month(r.Month)
		if targetMonth == month && r.Day == day {
			return asUTCDate(year, month, day), nil
		}
		targetYear := year
		if targetMonth < month || (targetMonth == month && r.Day < day) {
			targetYear++
		}
		return asUTCDate(targetYear, targetMonth, clampDay(r.Day, targetMonth, targetYear)), nil
	}

	return time.Time{}, fmt.Errorf("%w: unknown type %q", ErrInvalidRecurrence, r.Type)
}

func asUTCDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// clampDay pulls an out-of-range day back to the last day of the month,
// so monthly day 31 lands on Apr 30 instead of an invalid date.
func clampDay(day int, month time.Month, year int) int {
	last := daysInMonth(month, year)
	if day > last {
		return last
	}
	return day
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
