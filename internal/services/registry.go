package services

import (
	"context"
	"log/slog"
	"time"

	"confbooking/internal/domain"
)

type registryService struct {
	conferences domain.ConferenceRepository
	users       domain.UserRepository
	logger      *slog.Logger
}

// NewRegistryService creates a RegistryService over the given stores.
func NewRegistryService(
	conferences domain.ConferenceRepository,
	users domain.UserRepository,
	logger *slog.Logger,
) domain.RegistryService {
	return &registryService{
		conferences: conferences,
		users:       users,
		logger:      logger,
	}
}

func (s *registryService) RegisterConference(ctx context.Context, name, location string, topics []string, start, end time.Time, totalSlots int) (*domain.Conference, error) {
	conf, err := domain.NewConference(name, location, topics, start, end, totalSlots)
	if err != nil {
		return nil, err
	}
	if err := s.conferences.Create(ctx, conf); err != nil {
		return nil, err
	}
	s.logger.Info("conference registered",
		"conference", conf.Name,
		"location", conf.Location,
		"start", conf.StartTime,
		"total_slots", conf.TotalSlots,
	)
	return conf, nil
}

func (s *registryService) RegisterUser(ctx context.Context, userID string, topics []string) (*domain.User, error) {
	user, err := domain.NewUser(userID, topics)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "topics", len(user.InterestedTopics))
	return user, nil
}

func (s *registryService) GetConference(ctx context.Context, name string) (*domain.Conference, error) {
	return s.conferences.GetByName(ctx, name)
}

func (s *registryService) ListConferences(ctx context.Context) ([]*domain.Conference, error) {
	return s.conferences.List(ctx)
}
