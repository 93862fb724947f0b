package domain

import (
	"context"
	"time"
)

// RegistryService defines the business logic for registering conferences and
// users.
type RegistryService interface {
	RegisterConference(ctx context.Context, name, location string, topics []string, start, end time.Time, totalSlots int) (*Conference, error)
	RegisterUser(ctx context.Context, userID string, topics []string) (*User, error)
	GetConference(ctx context.Context, name string) (*Conference, error)
	ListConferences(ctx context.Context) ([]*Conference, error)
}
