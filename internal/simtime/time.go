// Package simtime implements the weekday+seconds-of-day simulated clock.
package simtime

import "fmt"

// Weekday is an ordinal in [0,7) whose meaning depends on the configured
// base day (day 0). It does not reuse time.Weekday because the simulation's
// "day 0" is configurable (spec.md §3, §4.2) and need not be Sunday.
type Weekday int

const daysPerWeek = 7
const secondsPerDay = 86400

// Names of the seven weekdays in natural order, independent of which one is
// currently mapped to ordinal 0.
var weekdayNames = [daysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Time is a point in the simulated week: a weekday ordinal and a
// seconds-of-day offset in [0, 86400).
type Time struct {
	Weekday Weekday
	Seconds int
}

// New builds a Time, normalising a seconds-of-day value that may already
// have overflowed past a day boundary (e.g. during construction from a
// running total).
func New(weekday Weekday, seconds int) Time {
	days, secs := divmod(seconds, secondsPerDay)
	return Time{
		Weekday: normalizeWeekday(int(weekday) + days),
		Seconds: secs,
	}
}

// divmod mimics Python's divmod: the remainder always has the sign of the
// divisor (here always positive), so it is safe to use directly as an
// array/seconds index even for negative dividends.
func divmod(a, b int) (int, int) {
	q := a / b
	r := a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

func normalizeWeekday(w int) Weekday {
	_, r := divmod(w, daysPerWeek)
	return Weekday(r)
}

// totalSeconds returns this Time's offset from the start of the simulated
// week (weekday 0, second 0).
func (t Time) totalSeconds() int {
	return int(t.Weekday)*secondsPerDay + t.Seconds
}

// Before reports whether t occurs strictly earlier than other within the
// same simulated week.
func (t Time) Before(other Time) bool {
	return t.totalSeconds() < other.totalSeconds()
}

// After reports whether t occurs strictly later than other within the same
// simulated week.
func (t Time) After(other Time) bool {
	return t.totalSeconds() > other.totalSeconds()
}

// Equal reports whether t and other denote the same instant.
func (t Time) Equal(other Time) bool {
	return t.totalSeconds() == other.totalSeconds()
}

// Compare returns -1, 0 or 1 as t is before, equal to, or after other.
func (t Time) Compare(other Time) int {
	a, b := t.totalSeconds(), other.totalSeconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Add returns t shifted forward by dt seconds (dt may be negative); the
// weekday wraps modulo 7 and the result's seconds-of-day is always in
// [0, 86400) (spec.md §4.2).
func (t Time) Add(dt int) Time {
	return New(t.Weekday, t.Seconds+dt)
}

// Sub returns the number of seconds from other to t, wrapping forward over
// the week boundary when t precedes other (spec.md §3: "subtraction wraps
// over a 7-day week").
func (t Time) Sub(other Time) int {
	diff := t.totalSeconds() - other.totalSeconds()
	if diff < 0 {
		diff += daysPerWeek * secondsPerDay
	}
	return diff
}

// WeekdayName returns the human-readable name of t's weekday under the
// given base-day mapping (see ShiftBaseDay).
func (t Time) WeekdayName(base Weekday) string {
	return weekdayNames[normalizeWeekday(int(t.Weekday)+int(base))]
}

func (t Time) String() string {
	h, rem := divmod(t.Seconds, 3600)
	m, s := divmod(rem, 60)
	return fmt.Sprintf("day%d %02d:%02d:%02d", t.Weekday, h, m, s)
}

// ShiftBaseDay rotates a Weekday ordinal so that base becomes day 0,
// implementing spec.md §3/§4.2's "a module-level mapping defines weekday
// ordinals; shifting the mapping changes the base day". Every Time
// constructed against the natural (unshifted) ordinal can be moved into the
// shifted frame with this function.
func ShiftBaseDay(w Weekday, base Weekday) Weekday {
	return normalizeWeekday(int(w) - int(base))
}
