package domain

import (
	"context"
	"time"
)

// Notifier receives booking lifecycle events (infrastructure port). The engine
// only decides that a user must be told something; delivery is external and a
// notification failure never fails the engine operation that produced it.
type Notifier interface {
	// SlotAvailable tells the user at the head of a waitlist that a seat is
	// theirs to confirm until the deadline.
	SlotAvailable(ctx context.Context, userID, conferenceName, bookingID string, deadline time.Time) error
	BookingConfirmed(ctx context.Context, userID, conferenceName, bookingID string) error
	BookingWaitlisted(ctx context.Context, userID, conferenceName, bookingID string) error
	BookingCanceled(ctx context.Context, userID, conferenceName, bookingID, reason string) error
}
