package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"confbooking/internal/domain"
)

// ConferenceRepo is an in-memory domain.ConferenceRepository keyed by
// conference name. Reads hand out copies and writes store copies, so a
// conference obtained from the repo is never mutated behind a reader's back.
type ConferenceRepo struct {
	mu     sync.RWMutex
	byName map[string]*domain.Conference
}

func copyConference(conf *domain.Conference) *domain.Conference {
	cp := *conf
	return &cp
}

// NewConferenceRepo returns an empty ConferenceRepo.
func NewConferenceRepo() *ConferenceRepo {
	return &ConferenceRepo{byName: make(map[string]*domain.Conference)}
}

func (r *ConferenceRepo) Create(ctx context.Context, conf *domain.Conference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[conf.Name]; ok {
		return &domain.Error{
			Kind:           domain.KindDuplicate,
			Message:        fmt.Sprintf("conference %q already exists", conf.Name),
			ConferenceName: conf.Name,
		}
	}
	r.byName[conf.Name] = copyConference(conf)
	return nil
}

func (r *ConferenceRepo) GetByName(ctx context.Context, name string) (*domain.Conference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conf, ok := r.byName[name]
	if !ok {
		return nil, &domain.Error{
			Kind:           domain.KindNotFound,
			Message:        fmt.Sprintf("conference %q not found", name),
			ConferenceName: name,
		}
	}
	return copyConference(conf), nil
}

func (r *ConferenceRepo) Update(ctx context.Context, conf *domain.Conference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[conf.Name]; !ok {
		return &domain.Error{
			Kind:           domain.KindNotFound,
			Message:        fmt.Sprintf("conference %q not found", conf.Name),
			ConferenceName: conf.Name,
		}
	}
	r.byName[conf.Name] = copyConference(conf)
	return nil
}

func (r *ConferenceRepo) List(ctx context.Context) ([]*domain.Conference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Conference, 0, len(r.byName))
	for _, conf := range r.byName {
		out = append(out, copyConference(conf))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
