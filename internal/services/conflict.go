package services

import (
	"context"
	"fmt"

	"confbooking/internal/domain"
)

// ConflictDetector decides whether a user's confirmed bookings overlap a
// candidate conference's time window. Only Confirmed bookings count: a user
// may hold any number of overlapping Waitlisted bookings, but at most one
// Confirmed booking per overlapping time region.
type ConflictDetector struct {
	users       domain.UserRepository
	conferences domain.ConferenceRepository
	bookings    domain.BookingRepository
}

// NewConflictDetector creates a ConflictDetector over the given stores.
func NewConflictDetector(
	users domain.UserRepository,
	conferences domain.ConferenceRepository,
	bookings domain.BookingRepository,
) *ConflictDetector {
	return &ConflictDetector{
		users:       users,
		conferences: conferences,
		bookings:    bookings,
	}
}

// ConflictingBooking returns the id of a Confirmed booking of the user whose
// conference window overlaps the candidate's, or "" when there is none. The
// overlap test is half-open: [s1,e1) and [s2,e2) overlap iff
// NOT(e1 <= s2 OR s1 >= e2).
func (d *ConflictDetector) ConflictingBooking(ctx context.Context, userID string, candidate *domain.Conference) (string, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, bookingID := range user.ActiveBookings() {
		booking, err := d.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return "", fmt.Errorf("get booking %s: %w", bookingID, err)
		}
		if booking.Status != domain.StatusConfirmed {
			continue
		}
		conf, err := d.conferences.GetByName(ctx, booking.ConferenceName)
		if err != nil {
			return "", fmt.Errorf("get conference %q: %w", booking.ConferenceName, err)
		}
		if conf.Overlaps(candidate.StartTime, candidate.EndTime) {
			return bookingID, nil
		}
	}
	return "", nil
}
