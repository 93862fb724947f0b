package memory

import (
	"context"
	"sync"
)

// WaitlistRepo is an in-memory domain.WaitlistRepository: one FIFO queue of
// booking ids per conference name.
type WaitlistRepo struct {
	mu     sync.RWMutex
	queues map[string][]string
}

// NewWaitlistRepo returns a WaitlistRepo with no queues.
func NewWaitlistRepo() *WaitlistRepo {
	return &WaitlistRepo{queues: make(map[string][]string)}
}

func (r *WaitlistRepo) Enqueue(ctx context.Context, conferenceName, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queues[conferenceName] = append(r.queues[conferenceName], bookingID)
	return nil
}

func (r *WaitlistRepo) Remove(ctx context.Context, conferenceName, bookingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.queues[conferenceName]
	for i, id := range queue {
		if id == bookingID {
			r.queues[conferenceName] = append(queue[:i:i], queue[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *WaitlistRepo) Peek(ctx context.Context, conferenceName string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	queue := r.queues[conferenceName]
	if len(queue) == 0 {
		return "", false, nil
	}
	return queue[0], true, nil
}

func (r *WaitlistRepo) MoveToBack(ctx context.Context, conferenceName, bookingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.queues[conferenceName]
	for i, id := range queue {
		if id == bookingID {
			rest := append(queue[:i:i], queue[i+1:]...)
			r.queues[conferenceName] = append(rest, bookingID)
			return true, nil
		}
	}
	return false, nil
}

func (r *WaitlistRepo) Drain(ctx context.Context, conferenceName string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.queues[conferenceName]
	delete(r.queues, conferenceName)
	return queue, nil
}

func (r *WaitlistRepo) List(ctx context.Context, conferenceName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	queue := r.queues[conferenceName]
	out := make([]string, len(queue))
	copy(out, queue)
	return out, nil
}
