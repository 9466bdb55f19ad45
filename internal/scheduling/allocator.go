// Package scheduling allocates whole-hour appointment slots per doctor.
package scheduling

import (
	"context"
	"fmt"
	"time"
)

// Clinic hours: whole-hour slots from 09:00 through 17:00 inclusive.
const (
	openingHour = 9
	closingHour = 17
)

// ConflictChecker reports whether a doctor already has an encounter at the
// exact timestamp. Two doctors may share a timestamp; one doctor may not.
type ConflictChecker interface {
	SlotTaken(ctx context.Context, doctorID string, at time.Time) (bool, error)
}

// Allocator enumerates candidate appointment slots for a doctor.
type Allocator struct {
	checker ConflictChecker
}

// NewAllocator builds an allocator over the given conflict checker.
func NewAllocator(checker ConflictChecker) *Allocator {
	if checker == nil {
		panic("scheduling: conflict checker required")
	}
	return &Allocator{checker: checker}
}

// NextDefaultSlot picks the default booking slot: the next whole hour within
// clinic hours today, or 09:00 two days out when the day is over. If the
// candidate is already taken it shifts exactly two days forward once; a second
// collision is not retried.
func (a *Allocator) NextDefaultSlot(ctx context.Context, doctorID string, now time.Time) (time.Time, error) {
	startHour := now.Hour() + 1
	if startHour < openingHour {
		startHour = openingHour
	}

	var candidate time.Time
	if startHour > closingHour {
		day := now.AddDate(0, 0, 2)
		candidate = time.Date(day.Year(), day.Month(), day.Day(), openingHour, 0, 0, 0, day.Location())
	} else {
		candidate = time.Date(now.Year(), now.Month(), now.Day(), startHour, 0, 0, 0, now.Location())
	}

	taken, err := a.checker.SlotTaken(ctx, doctorID, candidate)
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduling: conflict check: %w", err)
	}
	if taken {
		candidate = candidate.AddDate(0, 0, 2)
	}
	return candidate, nil
}

// AvailableSlots lists open slots across daysAhead calendar days starting
// today, in ascending order. Sundays are skipped, as are slots at or before
// now on the current day. Scanning is first-fit: it stops as soon as limit
// slots are collected.
func (a *Allocator) AvailableSlots(ctx context.Context, doctorID string, now time.Time, daysAhead, limit int) ([]time.Time, error) {
	if limit <= 0 {
		return nil, nil
	}

	slots := make([]time.Time, 0, limit)
	for dayOffset := 0; dayOffset < daysAhead; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		if day.Weekday() == time.Sunday {
			continue
		}

		for hour := openingHour; hour <= closingHour; hour++ {
			slot := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
			if dayOffset == 0 && !slot.After(now) {
				continue
			}

			taken, err := a.checker.SlotTaken(ctx, doctorID, slot)
			if err != nil {
				return nil, fmt.Errorf("scheduling: conflict check: %w", err)
			}
			if !taken {
				slots = append(slots, slot)
				if len(slots) >= limit {
					return slots, nil
				}
			}
		}
	}
	return slots, nil
}
