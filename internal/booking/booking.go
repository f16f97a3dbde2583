// Package booking decides whether a requested appointment collides with
// existing ones. Intervals are half-open: a booking ending at 10:30 does not
// overlap one starting at 10:30.
package booking

import (
	"time"

	"petcare/backend/internal/domain"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// SharesResource reports whether two bookings use the same staff member or
// the same room. Empty ids never match.
func SharesResource(a, b domain.Booking) bool {
	if a.StaffID != "" && a.StaffID == b.StaffID {
		return true
	}
	return a.RoomID != "" && a.RoomID == b.RoomID
}

// Blocks reports whether existing keeps candidate from being booked.
func Blocks(candidate, existing domain.Booking) bool {
	if existing.Status == domain.BookingStatusCancelled {
		return false
	}
	if !SharesResource(candidate, existing) {
		return false
	}
	return Overlaps(candidate.StartTime, candidate.EndTime, existing.StartTime, existing.EndTime)
}

// FindConflict returns the first booking in existing that blocks candidate.
// excludeID, when set, is skipped so a booking can be moved without
// colliding with itself.
func FindConflict(candidate domain.Booking, existing []domain.Booking, excludeID string) (*domain.Booking, bool) {
	if candidate.StaffID == "" && candidate.RoomID == "" {
		return nil, false
	}
	for i := range existing {
		b := existing[i]
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if Blocks(candidate, b) {
			return &b, true
		}
	}
	return nil, false
}

// ValidStatus reports whether status is a known booking status.
func ValidStatus(status string) bool {
	switch status {
	case domain.BookingStatusConfirmed,
		domain.BookingStatusCheckedIn,
		domain.BookingStatusInProgress,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
		domain.BookingStatusNoShow:
		return true
	}
	return false
}
