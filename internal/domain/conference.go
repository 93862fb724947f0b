package domain

import (
	"context"
	"fmt"
	"time"
)

// Limits enforced when a conference is registered.
const (
	MaxConferenceTopics   = 10
	MaxConferenceDuration = 12 * time.Hour
)

// Conference represents a time-boxed conference with a fixed seat capacity.
// Everything except AvailableSlots is immutable after creation.
type Conference struct {
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Topics         []string  `json:"topics"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
}

// NewConference validates the inputs and returns a Conference with all slots
// available. The time window is half-open: [start, end).
func NewConference(name, location string, topics []string, start, end time.Time, totalSlots int) (*Conference, error) {
	if name == "" {
		return nil, &Error{Kind: KindValidation, Message: "conference name is required"}
	}
	if len(topics) > MaxConferenceTopics {
		return nil, &Error{
			Kind:           KindValidation,
			Message:        fmt.Sprintf("a conference may have at most %d topics", MaxConferenceTopics),
			ConferenceName: name,
		}
	}
	if totalSlots <= 0 {
		return nil, &Error{
			Kind:           KindValidation,
			Message:        "total slots must be greater than 0",
			ConferenceName: name,
		}
	}
	if !start.Before(end) {
		return nil, &Error{
			Kind:           KindValidation,
			Message:        "start time must be before end time",
			ConferenceName: name,
		}
	}
	if end.Sub(start) > MaxConferenceDuration {
		return nil, &Error{
			Kind:           KindValidation,
			Message:        fmt.Sprintf("conference duration cannot exceed %s", MaxConferenceDuration),
			ConferenceName: name,
		}
	}
	return &Conference{
		Name:           name,
		Location:       location,
		Topics:         topics,
		StartTime:      start,
		EndTime:        end,
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
	}, nil
}

// TryAcquireSlot consumes one available slot. It reports whether a slot was
// acquired; on false the conference is unchanged. Must only be called while
// the booking engine holds exclusive access.
func (c *Conference) TryAcquireSlot() bool {
	if c.AvailableSlots > 0 {
		c.AvailableSlots--
		return true
	}
	return false
}

// ReleaseSlot returns one slot, capped at the total capacity.
func (c *Conference) ReleaseSlot() {
	if c.AvailableSlots < c.TotalSlots {
		c.AvailableSlots++
	}
}

// HasSlotAvailable reports whether at least one slot remains.
func (c *Conference) HasSlotAvailable() bool {
	return c.AvailableSlots > 0
}

// HasStartedAt reports whether the conference has started as of now.
func (c *Conference) HasStartedAt(now time.Time) bool {
	return !now.Before(c.StartTime)
}

// Overlaps reports whether the half-open interval [start, end) intersects the
// conference's own window: NOT(end <= c.start OR start >= c.end).
func (c *Conference) Overlaps(start, end time.Time) bool {
	return end.After(c.StartTime) && start.Before(c.EndTime)
}

// ConferenceRepository defines the interface for conference storage.
type ConferenceRepository interface {
	Create(ctx context.Context, conf *Conference) error
	GetByName(ctx context.Context, name string) (*Conference, error)
	Update(ctx context.Context, conf *Conference) error
	List(ctx context.Context) ([]*Conference, error)
}
