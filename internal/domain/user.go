package domain

import "context"

// MaxInterestedTopics bounds the interests a user may register with.
const MaxInterestedTopics = 50

// User represents a registered user together with the status the system last
// recorded for each of their bookings.
// swagger:model User
type User struct {
	ID               string   `json:"id"`
	InterestedTopics []string `json:"interested_topics"`

	// BookingStatuses maps booking id to the latest status recorded for this
	// user. Mutated only by the booking engine.
	BookingStatuses map[string]BookingStatus `json:"-"`
}

// NewUser validates the inputs and returns a User with no bookings.
func NewUser(id string, topics []string) (*User, error) {
	if id == "" {
		return nil, &Error{Kind: KindValidation, Message: "user id is required"}
	}
	if len(topics) > MaxInterestedTopics {
		return nil, &Error{
			Kind:    KindValidation,
			Message: "a user may have at most 50 interested topics",
			UserID:  id,
		}
	}
	return &User{
		ID:               id,
		InterestedTopics: topics,
		BookingStatuses:  make(map[string]BookingStatus),
	}, nil
}

// AddBooking records a booking and its initial status.
func (u *User) AddBooking(bookingID string, status BookingStatus) {
	u.BookingStatuses[bookingID] = status
}

// UpdateBookingStatus updates a recorded booking's status. Unknown booking ids
// are ignored.
func (u *User) UpdateBookingStatus(bookingID string, status BookingStatus) {
	if _, ok := u.BookingStatuses[bookingID]; ok {
		u.BookingStatuses[bookingID] = status
	}
}

// RemoveBooking drops a booking from the user's record.
func (u *User) RemoveBooking(bookingID string) {
	delete(u.BookingStatuses, bookingID)
}

// ActiveBookings returns the ids of the user's bookings whose recorded status
// is not Canceled. Order is unspecified.
func (u *User) ActiveBookings() []string {
	var active []string
	for id, status := range u.BookingStatuses {
		if status != StatusCanceled {
			active = append(active, id)
		}
	}
	return active
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}
