package recurrence

import (
	"errors"
	"testing"
	"time"
)

func mustParse(t *testing.T, raw string) Rule {
	t.Helper()
	rule, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return rule
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseRejectsInvalidRules(t *testing.T) {
	cases := []string{
		`{"type":"fortnightly"}`,
		`{"type":""}`,
		`not json`,
		`{"type":"weekly","dayOfWeek":7}`,
		`{"type":"monthly","dayOfMonth":0}`,
		`{"type":"monthly","dayOfMonth":32}`,
		`{"type":"yearly","month":12,"day":1}`,
		`{"type":"yearly","month":3,"day":0}`,
	}
	for _, raw := range cases {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidRecurrence) {
			t.Fatalf("parse %s: expected ErrInvalidRecurrence, got %v", raw, err)
		}
	}
}

func TestParseConvertsZeroBasedMonth(t *testing.T) {
	rule := mustParse(t, `{"type":"yearly","month":0,"day":15}`)
	if rule.Month != 1 {
		t.Fatalf("expected wire month 0 to become January (1), got %d", rule.Month)
	}
	rule = mustParse(t, `{"type":"yearly","month":11,"day":31}`)
	if rule.Month != 12 {
		t.Fatalf("expected wire month 11 to become December (12), got %d", rule.Month)
	}
}

func TestNextDue(t *testing.T) {
	// 2026-03-11 is a Wednesday.
	wednesday := time.Date(2026, time.March, 11, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		rule string
		now  time.Time
		want time.Time
	}{
		{
			name: "daily is always today",
			rule: `{"type":"daily"}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 11),
		},
		{
			name: "weekly matching weekday is today, not next week",
			rule: `{"type":"weekly","dayOfWeek":3}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 11),
		},
		{
			name: "weekly earlier weekday rolls to next week",
			rule: `{"type":"weekly","dayOfWeek":1}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 16),
		},
		{
			name: "weekly later weekday stays in this week",
			rule: `{"type":"weekly","dayOfWeek":5}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 13),
		},
		{
			name: "monthly matching day is today",
			rule: `{"type":"monthly","dayOfMonth":11}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 11),
		},
		{
			name: "monthly day still ahead stays in current month",
			rule: `{"type":"monthly","dayOfMonth":15}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 15),
		},
		{
			name: "monthly day already passed rolls to next month",
			rule: `{"type":"monthly","dayOfMonth":5}`,
			now:  time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
			want: utcDate(2026, time.April, 5),
		},
		{
			name: "monthly rolls into next year in december",
			rule: `{"type":"monthly","dayOfMonth":5}`,
			now:  time.Date(2026, time.December, 20, 9, 0, 0, 0, time.UTC),
			want: utcDate(2027, time.January, 5),
		},
		{
			name: "monthly day 31 clips in a short month",
			rule: `{"type":"monthly","dayOfMonth":31}`,
			now:  time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC),
			want: utcDate(2026, time.April, 30),
		},
		{
			name: "monthly rollover clips to end of february",
			rule: `{"type":"monthly","dayOfMonth":29}`,
			now:  time.Date(2026, time.January, 30, 9, 0, 0, 0, time.UTC),
			want: utcDate(2026, time.February, 28),
		},
		{
			name: "yearly matching date is today",
			rule: `{"type":"yearly","month":2,"day":11}`,
			now:  wednesday,
			want: utcDate(2026, time.March, 11),
		},
		{
			name: "yearly date still ahead stays in this year",
			rule: `{"type":"yearly","month":6,"day":4}`,
			now:  wednesday,
			want: utcDate(2026, time.July, 4),
		},
		{
			name: "yearly date already passed rolls to next year",
			rule: `{"type":"yearly","month":0,"day":15}`,
			now:  wednesday,
			want: utcDate(2027, time.January, 15),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := mustParse(t, tc.rule)
			got, err := rule.NextDue(tc.now)
			if err != nil {
				t.Fatalf("next due: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want.Format(time.DateOnly), got.Format(time.DateOnly))
			}
		})
	}
}

func TestNextDueUsesLocalCalendarDay(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 01:30 in Colombo is still the previous day in UTC; the due date
	// must follow the local calendar.
	now := time.Date(2026, time.March, 11, 1, 30, 0, 0, colombo)
	rule := mustParse(t, `{"type":"daily"}`)
	got, err := rule.NextDue(now)
	if err != nil {
		t.Fatalf("next due: %v", err)
	}
	if want := utcDate(2026, time.March, 11); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(time.DateOnly), got.Format(time.DateOnly))
	}
}

func TestNextDueStableWithinDay(t *testing.T) {
	rules := []string{
		`{"type":"daily"}`,
		`{"type":"weekly","dayOfWeek":5}`,
		`{"type":"monthly","dayOfMonth":20}`,
		`{"type":"yearly","month":10,"day":2}`,
	}
	day := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)

	for _, raw := range rules {
		rule := mustParse(t, raw)
		first, err := rule.NextDue(day.Add(1 * time.Minute))
		if err != nil {
			t.Fatalf("next due %s: %v", raw, err)
		}
		for _, offset := range []time.Duration{6 * time.Hour, 12 * time.Hour, 23*time.Hour + 59*time.Minute} {
			again, err := rule.NextDue(day.Add(offset))
			if err != nil {
				t.Fatalf("next due %s: %v", raw, err)
			}
			if !again.Equal(first) {
				t.Fatalf("rule %s drifted within a day: %s vs %s", raw, first, again)
			}
		}
	}
}
