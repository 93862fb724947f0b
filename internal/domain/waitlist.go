package domain

import "context"

// WaitlistRepository owns, per conference, the FIFO queue of waitlisted
// booking ids. The queue for a conference always equals, as a set, the
// Waitlisted bookings referencing that conference.
type WaitlistRepository interface {
	// Enqueue appends a booking id at the back of the conference's queue.
	Enqueue(ctx context.Context, conferenceName, bookingID string) error
	// Remove deletes a booking id from anywhere in the queue, preserving the
	// relative order of the remaining entries. It reports whether the id was
	// present.
	Remove(ctx context.Context, conferenceName, bookingID string) (bool, error)
	// Peek returns the id at the head of the queue without removing it; ok is
	// false when the queue is empty.
	Peek(ctx context.Context, conferenceName string) (id string, ok bool, err error)
	// MoveToBack removes a booking id from its current position and re-appends
	// it at the back. It reports whether the id was present.
	MoveToBack(ctx context.Context, conferenceName, bookingID string) (bool, error)
	// Drain removes and returns every queued id in order.
	Drain(ctx context.Context, conferenceName string) ([]string, error)
	// List returns the queued ids in order without modifying the queue.
	List(ctx context.Context, conferenceName string) ([]string, error)
}
