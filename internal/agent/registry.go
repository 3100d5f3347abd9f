package agent

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"dinotidus/internal/config"
	"dinotidus/internal/logging"
)

var ErrSessionNotFound = errors.New("session not found")

type session struct {
	agent   *Agent
	lock    chan struct{}
	deleted atomic.Bool
}

// Registry holds independent agents keyed by session id. Operations on one
// session are serialized; different sessions run in parallel.
type Registry struct {
	model config.ModelConfig
	cfg   config.AgentConfig
	log   *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry(model config.ModelConfig, cfg config.AgentConfig, log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{
		model:    model,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (string, error) {
	id := uuid.NewString()
	a, err := New(r.model, r.cfg, WithLogger(r.log.With("session", id)))
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.sessions[id] = &session{agent: a, lock: make(chan struct{}, 1)}
	r.mu.Unlock()

	r.log.Info("session %s created", id)
	return id, nil
}

func (r *Registry) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Exists reports whether id is a live session.
func (r *Registry) Exists(id string) bool {
	_, ok := r.get(id)
	return ok
}

// Delete removes a session. Calls already holding it finish normally.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.deleted.Store(true)
	r.log.Info("session %s deleted", id)
	return nil
}

// IDs returns the live session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Do runs fn with exclusive access to the session agent. It gives up with
// ctx.Err() if ctx ends while waiting for another call on the same session.
func (r *Registry) Do(ctx context.Context, id string, fn func(*Agent) error) error {
	s, ok := r.get(id)
	if !ok {
		return ErrSessionNotFound
	}

	select {
	case s.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.lock }()

	if s.deleted.Load() {
		return ErrSessionNotFound
	}
	return fn(s.agent)
}
