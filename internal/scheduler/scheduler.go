// Package scheduler computes when reminders fire. It is pure: callers pass
// the timezone, the configured hour marks, and the reference instant.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoHours means the hour set is empty and nothing can be scheduled.
var ErrNoHours = errors.New("no reminder hours configured")

// ConfigurationError marks a user whose timezone or hour configuration is
// unusable. The affected user is skipped; the engine keeps running.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad schedule configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("bad schedule configuration: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Slot is one scheduled reminder occurrence in the user's local calendar.
// The user dimension of the slot identity is supplied by the caller.
type Slot struct {
	Date string // YYYY-MM-DD, user-local
	Hour int
}

// NextFire returns the next reminder instant strictly after now: today at
// the smallest configured hour past the current local hour-and-minute, or
// tomorrow at the smallest configured hour. The result is UTC so dispatch
// never re-derives local time.
func NextFire(tz string, hours []int, now time.Time) (time.Time, error) {
	marks, loc, err := prepare(tz, hours)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	for _, h := range marks {
		candidate := time.Date(local.Year(), local.Month(), local.Day(), h, 0, 0, 0, loc)
		if candidate.After(local) {
			return candidate.UTC(), nil
		}
	}

	// Nothing left today; first mark tomorrow. time.Date normalizes the
	// day overflow across month and year boundaries.
	next := time.Date(local.Year(), local.Month(), local.Day()+1, marks[0], 0, 0, 0, loc)
	return next.UTC(), nil
}

// DueSlot reports whether now falls on a configured hour mark at minute
// zero, within the tolerance window that absorbs tick jitter. An empty hour
// set is simply never due.
func DueSlot(tz string, hours []int, now time.Time, tolerance time.Duration) (Slot, bool, error) {
	if len(hours) == 0 {
		return Slot{}, false, nil
	}

	marks, loc, err := prepare(tz, hours)
	if err != nil {
		return Slot{}, false, err
	}

	local := now.In(loc)
	for _, h := range marks {
		mark := time.Date(local.Year(), local.Month(), local.Day(), h, 0, 0, 0, loc)
		diff := local.Sub(mark)
		if diff >= 0 && diff < tolerance {
			return Slot{Date: local.Format("2006-01-02"), Hour: h}, true, nil
		}
	}
	return Slot{}, false, nil
}

// prepare validates the inputs and returns the hour marks sorted ascending
// with duplicates removed.
func prepare(tz string, hours []int) ([]int, *time.Location, error) {
	if len(hours) == 0 {
		return nil, nil, ErrNoHours
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, nil, &ConfigurationError{Reason: fmt.Sprintf("unknown timezone %q", tz), Err: err}
	}

	seen := make(map[int]bool, len(hours))
	marks := make([]int, 0, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 {
			return nil, nil, &ConfigurationError{Reason: fmt.Sprintf("hour %d out of range", h)}
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		marks = append(marks, h)
	}
	sort.Ints(marks)

	return marks, loc, nil
}
