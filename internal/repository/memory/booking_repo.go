package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"confbooking/internal/domain"
)

// BookingRepo is an in-memory domain.BookingRepository keyed by booking id.
// Reads hand out copies and writes store copies, so a booking obtained from
// the repo is never mutated behind a reader's back.
type BookingRepo struct {
	mu   sync.RWMutex
	byID map[string]*domain.Booking
}

func copyBooking(booking *domain.Booking) *domain.Booking {
	cp := *booking
	return &cp
}

// NewBookingRepo returns an empty BookingRepo.
func NewBookingRepo() *BookingRepo {
	return &BookingRepo{byID: make(map[string]*domain.Booking)}
}

func (r *BookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[booking.ID]; ok {
		return &domain.Error{
			Kind:      domain.KindDuplicate,
			Message:   fmt.Sprintf("booking %q already exists", booking.ID),
			BookingID: booking.ID,
		}
	}
	r.byID[booking.ID] = copyBooking(booking)
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.byID[id]
	if !ok {
		return nil, &domain.Error{
			Kind:      domain.KindNotFound,
			Message:   fmt.Sprintf("booking %q not found", id),
			BookingID: id,
		}
	}
	return copyBooking(booking), nil
}

func (r *BookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[booking.ID]; !ok {
		return &domain.Error{
			Kind:      domain.KindNotFound,
			Message:   fmt.Sprintf("booking %q not found", booking.ID),
			BookingID: booking.ID,
		}
	}
	r.byID[booking.ID] = copyBooking(booking)
	return nil
}

// List returns every booking, ordered by creation time.
func (r *BookingRepo) List(ctx context.Context) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Booking, 0, len(r.byID))
	for _, booking := range r.byID {
		out = append(out, copyBooking(booking))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BookingRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Booking
	for _, booking := range r.byID {
		if booking.UserID == userID {
			out = append(out, copyBooking(booking))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BookingRepo) GetActiveByUserAndConference(ctx context.Context, userID, conferenceName string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, booking := range r.byID {
		if booking.UserID == userID &&
			booking.ConferenceName == conferenceName &&
			booking.Status != domain.StatusCanceled {
			return copyBooking(booking), nil
		}
	}
	return nil, &domain.Error{
		Kind:           domain.KindNotFound,
		Message:        fmt.Sprintf("no active booking for user %q on conference %q", userID, conferenceName),
		UserID:         userID,
		ConferenceName: conferenceName,
	}
}
