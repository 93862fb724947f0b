package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingStatus is a booking's lifecycle state. Canceled is terminal.
type BookingStatus string

const (
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusWaitlisted BookingStatus = "WAITLISTED"
	StatusCanceled   BookingStatus = "CANCELED"
)

// Booking represents a user's claim on a seat at a conference. UserID and
// ConferenceName are immutable after creation; Status moves through the
// engine's state machine only.
// swagger:model Booking
type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	ConferenceName string        `json:"conference_name"`
	Status         BookingStatus `json:"status"`

	// ConfirmationDeadline is meaningful only while the booking is Waitlisted
	// and at the head of its conference's waitlist awaiting user action.
	ConfirmationDeadline time.Time `json:"confirmation_deadline,omitzero"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewBooking returns a Booking with a fresh unique id. The caller sets the
// initial status depending on slot availability.
func NewBooking(userID, conferenceName string, createdAt time.Time) *Booking {
	return &Booking{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConferenceName: conferenceName,
		CreatedAt:      createdAt,
	}
}

// DeadlinePassed reports whether the confirmation deadline is behind now. A
// waitlisted booking that was never promoted to the head of its queue has a
// zero deadline, which counts as passed.
func (b *Booking) DeadlinePassed(now time.Time) bool {
	return now.After(b.ConfirmationDeadline)
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, booking *Booking) error
	ListByUserID(ctx context.Context, userID string) ([]*Booking, error)
	// GetActiveByUserAndConference returns the user's non-canceled booking for
	// the conference, or a not_found error when there is none.
	GetActiveByUserAndConference(ctx context.Context, userID, conferenceName string) (*Booking, error)
}

// BookingService defines the booking engine's operations. Mutating operations
// are atomic: each observes and commits a fully consistent system state.
type BookingService interface {
	// BookConference creates a booking for the user, Confirmed if a slot is
	// available and Waitlisted otherwise, and returns the new booking id.
	BookConference(ctx context.Context, userID, conferenceName string) (string, error)
	// CancelBooking cancels a booking, reclaiming the slot and promoting the
	// waitlist head when the booking was Confirmed.
	CancelBooking(ctx context.Context, bookingID string) error
	// ConfirmWaitlistedBooking attempts to promote a waitlisted booking to
	// Confirmed. It returns false without error when the confirmation deadline
	// has passed and the booking was requeued at the back of the waitlist.
	ConfirmWaitlistedBooking(ctx context.Context, bookingID string) (bool, error)
	GetBookingStatus(ctx context.Context, bookingID string) (BookingStatus, error)
	GetBooking(ctx context.Context, bookingID string) (*Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]*Booking, error)
}
