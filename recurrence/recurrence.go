package recurrence

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"taskquest/models"
)

// ErrInvalidRule reports a recurrence rule paired with a missing or
// out-of-order end date. Wrap checks go through errors.Is.
var ErrInvalidRule = errors.New("invalid recurrence configuration")

// Occurrences expands a recurrence rule into the dates it generates from
// anchor through end, both inclusive. The sequence is strictly increasing,
// finite and restartable; RecurrenceNone yields no dates. A rule other than
// RecurrenceNone requires an end date at or after the anchor.
func Occurrences(rule models.RecurrenceRule, anchor, end time.Time) (iter.Seq[time.Time], error) {
	if rule == models.RecurrenceNone {
		return func(yield func(time.Time) bool) {}, nil
	}
	if end.IsZero() {
		return nil, fmt.Errorf("%w: rule %q requires an end date", ErrInvalidRule, rule)
	}
	if end.Before(anchor) {
		return nil, fmt.Errorf("%w: end date %s is before anchor %s",
			ErrInvalidRule, end.Format(time.RFC3339), anchor.Format(time.RFC3339))
	}

	switch rule {
	case models.RecurrenceDaily:
		return everyNDays(anchor, end, 1), nil
	case models.RecurrenceWeekly:
		return everyNDays(anchor, end, 7), nil
	case models.RecurrenceMonthly:
		return monthly(anchor, end), nil
	default:
		return nil, fmt.Errorf("%w: unknown rule %q", ErrInvalidRule, rule)
	}
}

// Next returns the first occurrence strictly after the given time, or
// false when the series is exhausted before then.
func Next(rule models.RecurrenceRule, anchor, after, end time.Time) (time.Time, bool, error) {
	seq, err := Occurrences(rule, anchor, end)
	if err != nil {
		return time.Time{}, false, err
	}
	for d := range seq {
		if d.After(after) {
			return d, true, nil
		}
	}
	return time.Time{}, false, nil
}

func everyNDays(anchor, end time.Time, n int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := anchor; !d.After(end); d = d.AddDate(0, 0, n) {
			if !yield(d) {
				return
			}
		}
	}
}

func monthly(anchor, end time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for i := 0; ; i++ {
			d := monthlyOccurrence(anchor, i)
			if d.After(end) {
				return
			}
			if !yield(d) {
				return
			}
		}
	}
}

// monthlyOccurrence is the anchor shifted by the given number of months,
// clamped to the last day of months shorter than the anchor's day-of-month.
// The clamp is recomputed from the anchor each step so a February occurrence
// does not drag the rest of the series down to the 28th.
func monthlyOccurrence(anchor time.Time, months int) time.Time {
	y, m, _ := anchor.Date()
	first := time.Date(y, m+time.Month(months), 1,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
	day := anchor.Day()
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
