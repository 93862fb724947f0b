package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"confbooking/internal/domain"
)

// DefaultConfirmationGrace is how long the head of a waitlist has to confirm
// a freed slot before its turn expires.
const DefaultConfirmationGrace = time.Hour

// bookingService is the booking engine. A single RWMutex guards the
// conference, booking, and waitlist stores as a unit: every mutating operation
// takes the write lock before any state inspection and holds it to completion,
// so mutating operations are totally ordered and each observes a fully
// consistent, previously committed state. Status reads take the read lock and
// are therefore consistent as well.
type bookingService struct {
	mu sync.RWMutex

	conferences domain.ConferenceRepository
	users       domain.UserRepository
	bookings    domain.BookingRepository
	waitlists   domain.WaitlistRepository

	conflicts *ConflictDetector
	notifier  domain.Notifier
	logger    *slog.Logger

	grace time.Duration
	now   func() time.Time
}

// NewBookingService creates the booking engine. grace is the confirmation
// window stamped on promoted waitlist heads; values <= 0 fall back to
// DefaultConfirmationGrace.
func NewBookingService(
	conferences domain.ConferenceRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	waitlists domain.WaitlistRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
	grace time.Duration,
) domain.BookingService {
	if grace <= 0 {
		grace = DefaultConfirmationGrace
	}
	return &bookingService{
		conferences: conferences,
		users:       users,
		bookings:    bookings,
		waitlists:   waitlists,
		conflicts:   NewConflictDetector(users, conferences, bookings),
		notifier:    notifier,
		logger:      logger,
		grace:       grace,
		now:         time.Now,
	}
}

func (s *bookingService) BookConference(ctx context.Context, userID, conferenceName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	conf, err := s.conferences.GetByName(ctx, conferenceName)
	if err != nil {
		return "", err
	}

	now := s.now()
	if conf.HasStartedAt(now) {
		return "", &domain.Error{
			Kind:           domain.KindAlreadyStarted,
			Message:        fmt.Sprintf("conference %q has already started", conferenceName),
			ConferenceName: conferenceName,
		}
	}

	if existing, err := s.bookings.GetActiveByUserAndConference(ctx, userID, conferenceName); err == nil {
		return "", &domain.Error{
			Kind:           domain.KindDuplicateBooking,
			Message:        fmt.Sprintf("user %q already has an active booking %s for conference %q", userID, existing.ID, conferenceName),
			UserID:         userID,
			ConferenceName: conferenceName,
			BookingID:      existing.ID,
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("look up active booking: %w", err)
	}

	if conflictID, err := s.conflicts.ConflictingBooking(ctx, userID, conf); err != nil {
		return "", err
	} else if conflictID != "" {
		return "", &domain.Error{
			Kind:           domain.KindConflict,
			Message:        fmt.Sprintf("user %q holds a confirmed booking %s overlapping conference %q", userID, conflictID, conferenceName),
			UserID:         userID,
			ConferenceName: conferenceName,
			BookingID:      conflictID,
		}
	}

	booking := domain.NewBooking(userID, conferenceName, now)
	if conf.TryAcquireSlot() {
		booking.Status = domain.StatusConfirmed
		if err := s.conferences.Update(ctx, conf); err != nil {
			return "", fmt.Errorf("update conference: %w", err)
		}
	} else {
		booking.Status = domain.StatusWaitlisted
		if err := s.waitlists.Enqueue(ctx, conferenceName, booking.ID); err != nil {
			return "", fmt.Errorf("enqueue on waitlist: %w", err)
		}
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return "", fmt.Errorf("create booking: %w", err)
	}
	user.AddBooking(booking.ID, booking.Status)
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("update user: %w", err)
	}

	if booking.Status == domain.StatusConfirmed {
		if err := s.evictOverlappingWaitlists(ctx, userID, conf); err != nil {
			return "", err
		}
		s.notify("booking confirmed", s.notifier.BookingConfirmed(ctx, userID, conferenceName, booking.ID))
	} else {
		s.notify("booking waitlisted", s.notifier.BookingWaitlisted(ctx, userID, conferenceName, booking.ID))
	}
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"user_id", userID,
		"conference", conferenceName,
		"status", booking.Status,
	)
	return booking.ID, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == domain.StatusCanceled {
		return &domain.Error{
			Kind:      domain.KindAlreadyCanceled,
			Message:   fmt.Sprintf("booking %s is already canceled", bookingID),
			BookingID: bookingID,
		}
	}
	conf, err := s.conferences.GetByName(ctx, booking.ConferenceName)
	if err != nil {
		return fmt.Errorf("get conference: %w", err)
	}
	if conf.HasStartedAt(s.now()) {
		return &domain.Error{
			Kind:           domain.KindAlreadyStarted,
			Message:        fmt.Sprintf("cannot cancel booking %s after conference %q has started", bookingID, conf.Name),
			BookingID:      bookingID,
			ConferenceName: conf.Name,
		}
	}

	switch booking.Status {
	case domain.StatusConfirmed:
		conf.ReleaseSlot()
		if err := s.conferences.Update(ctx, conf); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		s.logger.Info("slot freed", "conference", conf.Name, "available_slots", conf.AvailableSlots)
		if err := s.processWaitlist(ctx, conf); err != nil {
			return err
		}
	case domain.StatusWaitlisted:
		if _, err := s.waitlists.Remove(ctx, conf.Name, bookingID); err != nil {
			return fmt.Errorf("remove from waitlist: %w", err)
		}
	}

	booking.Status = domain.StatusCanceled
	if err := s.bookings.Update(ctx, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	user.RemoveBooking(bookingID)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.notify("booking canceled", s.notifier.BookingCanceled(ctx, booking.UserID, conf.Name, bookingID, "canceled by user"))
	s.logger.Info("booking canceled", "booking_id", bookingID, "conference", conf.Name)
	return nil
}

func (s *bookingService) ConfirmWaitlistedBooking(ctx context.Context, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking.Status != domain.StatusWaitlisted {
		return false, &domain.Error{
			Kind:      domain.KindNotWaitlisted,
			Message:   fmt.Sprintf("booking %s is not waitlisted", bookingID),
			BookingID: bookingID,
		}
	}
	conf, err := s.conferences.GetByName(ctx, booking.ConferenceName)
	if err != nil {
		return false, fmt.Errorf("get conference: %w", err)
	}

	now := s.now()
	if conf.HasStartedAt(now) {
		// Nobody on this waitlist can be seated anymore.
		if err := s.cancelAllWaitlisted(ctx, conf); err != nil {
			return false, err
		}
		return false, &domain.Error{
			Kind:           domain.KindAlreadyStarted,
			Message:        fmt.Sprintf("cannot confirm booking %s after conference %q has started", bookingID, conf.Name),
			BookingID:      bookingID,
			ConferenceName: conf.Name,
		}
	}

	if booking.DeadlinePassed(now) {
		if _, err := s.waitlists.MoveToBack(ctx, conf.Name, bookingID); err != nil {
			return false, fmt.Errorf("requeue on waitlist: %w", err)
		}
		s.logger.Info("confirmation deadline passed, requeued",
			"booking_id", bookingID,
			"conference", conf.Name,
		)
		if conf.HasSlotAvailable() {
			if err := s.processWaitlist(ctx, conf); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	// The user's situation may have changed since being queued.
	if conflictID, err := s.conflicts.ConflictingBooking(ctx, booking.UserID, conf); err != nil {
		return false, err
	} else if conflictID != "" {
		return false, &domain.Error{
			Kind:           domain.KindConflict,
			Message:        fmt.Sprintf("user %q now holds a confirmed booking %s overlapping conference %q", booking.UserID, conflictID, conf.Name),
			UserID:         booking.UserID,
			ConferenceName: conf.Name,
			BookingID:      conflictID,
		}
	}

	if !conf.TryAcquireSlot() {
		return false, &domain.Error{
			Kind:           domain.KindNoSlot,
			Message:        fmt.Sprintf("no slots available for conference %q", conf.Name),
			ConferenceName: conf.Name,
			BookingID:      bookingID,
		}
	}
	if err := s.conferences.Update(ctx, conf); err != nil {
		return false, fmt.Errorf("update conference: %w", err)
	}

	if _, err := s.waitlists.Remove(ctx, conf.Name, bookingID); err != nil {
		return false, fmt.Errorf("remove from waitlist: %w", err)
	}
	booking.Status = domain.StatusConfirmed
	if err := s.bookings.Update(ctx, booking); err != nil {
		return false, fmt.Errorf("update booking: %w", err)
	}
	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	user.UpdateBookingStatus(bookingID, domain.StatusConfirmed)
	if err := s.users.Update(ctx, user); err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}

	if err := s.evictOverlappingWaitlists(ctx, booking.UserID, conf); err != nil {
		return false, err
	}
	s.notify("booking confirmed", s.notifier.BookingConfirmed(ctx, booking.UserID, conf.Name, bookingID))
	s.logger.Info("waitlisted booking confirmed", "booking_id", bookingID, "conference", conf.Name)
	return true, nil
}

func (s *bookingService) GetBookingStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return booking.Status, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	cp := *booking
	return &cp, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID string) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]*domain.Booking, len(bookings))
	for i, b := range bookings {
		cp := *b
		out[i] = &cp
	}
	return out, nil
}

// processWaitlist stamps a confirmation deadline on the head of the
// conference's waitlist and notifies that user. It does not change the head's
// status: the user must still confirm through ConfirmWaitlistedBooking.
func (s *bookingService) processWaitlist(ctx context.Context, conf *domain.Conference) error {
	headID, ok, err := s.waitlists.Peek(ctx, conf.Name)
	if err != nil {
		return fmt.Errorf("peek waitlist: %w", err)
	}
	if !ok {
		return nil
	}
	booking, err := s.bookings.GetByID(ctx, headID)
	if err != nil {
		return fmt.Errorf("get waitlist head %s: %w", headID, err)
	}
	deadline := s.now().Add(s.grace)
	booking.ConfirmationDeadline = deadline
	if err := s.bookings.Update(ctx, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	s.notify("slot available", s.notifier.SlotAvailable(ctx, booking.UserID, conf.Name, booking.ID, deadline))
	s.logger.Info("confirmation deadline set",
		"booking_id", booking.ID,
		"user_id", booking.UserID,
		"conference", conf.Name,
		"deadline", deadline,
	)
	return nil
}

// evictOverlappingWaitlists cancels the user's waitlisted bookings on every
// other conference whose window overlaps the one the user just got confirmed
// into: the user cannot attend any of them, so holding those queue positions
// would only block other users.
func (s *bookingService) evictOverlappingWaitlists(ctx context.Context, userID string, booked *domain.Conference) error {
	all, err := s.conferences.List(ctx)
	if err != nil {
		return fmt.Errorf("list conferences: %w", err)
	}
	for _, conf := range all {
		if conf.Name == booked.Name || !conf.Overlaps(booked.StartTime, booked.EndTime) {
			continue
		}
		ids, err := s.waitlists.List(ctx, conf.Name)
		if err != nil {
			return fmt.Errorf("list waitlist for %q: %w", conf.Name, err)
		}
		for _, id := range ids {
			booking, err := s.bookings.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("get booking %s: %w", id, err)
			}
			if booking.UserID != userID {
				continue
			}
			if _, err := s.waitlists.Remove(ctx, conf.Name, id); err != nil {
				return fmt.Errorf("remove from waitlist: %w", err)
			}
			if err := s.cancelWaitlisted(ctx, booking, "overlapping confirmed booking"); err != nil {
				return err
			}
		}
	}
	return nil
}

// cancelAllWaitlisted drains a started conference's waitlist, canceling every
// queued booking.
func (s *bookingService) cancelAllWaitlisted(ctx context.Context, conf *domain.Conference) error {
	ids, err := s.waitlists.Drain(ctx, conf.Name)
	if err != nil {
		return fmt.Errorf("drain waitlist: %w", err)
	}
	for _, id := range ids {
		booking, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get booking %s: %w", id, err)
		}
		if err := s.cancelWaitlisted(ctx, booking, "conference started"); err != nil {
			return err
		}
	}
	return nil
}

// cancelWaitlisted marks a booking already removed from its queue as Canceled
// and records the transition with the user. reason is only for the
// notification side channel.
func (s *bookingService) cancelWaitlisted(ctx context.Context, booking *domain.Booking, reason string) error {
	booking.Status = domain.StatusCanceled
	if err := s.bookings.Update(ctx, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	user.UpdateBookingStatus(booking.ID, domain.StatusCanceled)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.notify("booking canceled", s.notifier.BookingCanceled(ctx, booking.UserID, booking.ConferenceName, booking.ID, reason))
	s.logger.Info("waitlisted booking canceled",
		"booking_id", booking.ID,
		"conference", booking.ConferenceName,
		"reason", reason,
	)
	return nil
}

// notify logs a failed notification and moves on; delivery problems never fail
// the engine operation that triggered them.
func (s *bookingService) notify(event string, err error) {
	if err != nil {
		s.logger.Warn("notification failed", "event", event, "err", err)
	}
}
