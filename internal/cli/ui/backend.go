package ui

import (
	"context"
	"sync"

	"dinotidus/internal/agent"
	"dinotidus/internal/client"
	"dinotidus/pkg/neural"
)

// Backend is whatever answers the chat: an in-process agent or a remote host.
type Backend interface {
	Name() string
	Respond(ctx context.Context, text string) (agent.Reply, error)
	TrainBatch(ctx context.Context, pairs []neural.Pair) (agent.Stats, error)
	Stats(ctx context.Context) (agent.Stats, error)
	Examples(ctx context.Context) ([]neural.Pair, error)
	Save(ctx context.Context) (string, error)
	Load(ctx context.Context, model string) (agent.Stats, error)
	Reset(ctx context.Context) (agent.Stats, error)
}

// LocalBackend runs turns on an agent in this process. Commands are executed
// off the UI goroutine, so access to the agent is serialized here.
type LocalBackend struct {
	mu    sync.Mutex
	agent *agent.Agent
}

func NewLocalBackend(a *agent.Agent) *LocalBackend {
	return &LocalBackend{agent: a}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Respond(_ context.Context, text string) (agent.Reply, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agent.Respond(text), nil
}

func (b *LocalBackend) TrainBatch(_ context.Context, pairs []neural.Pair) (agent.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.agent.TrainBatch(pairs, nil)
	return b.agent.Stats(), nil
}

func (b *LocalBackend) Stats(_ context.Context) (agent.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agent.Stats(), nil
}

func (b *LocalBackend) Examples(_ context.Context) ([]neural.Pair, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agent.Examples(), nil
}

func (b *LocalBackend) Save(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agent.Save()
}

func (b *LocalBackend) Load(_ context.Context, model string) (agent.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.agent.Load(model); err != nil {
		return agent.Stats{}, err
	}
	return b.agent.Stats(), nil
}

func (b *LocalBackend) Reset(_ context.Context) (agent.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.agent.Reset(); err != nil {
		return agent.Stats{}, err
	}
	return b.agent.Stats(), nil
}

// RemoteBackend talks to a host over REST within one session.
type RemoteBackend struct {
	client    *client.APIClient
	sessionID string
}

// NewRemoteBackend opens a fresh session on the host.
func NewRemoteBackend(ctx context.Context, c *client.APIClient) (*RemoteBackend, error) {
	id, err := c.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	return &RemoteBackend{client: c, sessionID: id}, nil
}

func (b *RemoteBackend) Name() string { return b.client.BaseURL }

// SessionID is the host session used by this backend.
func (b *RemoteBackend) SessionID() string { return b.sessionID }

// Close deletes the host session.
func (b *RemoteBackend) Close(ctx context.Context) error {
	return b.client.DeleteSession(ctx, b.sessionID)
}

func (b *RemoteBackend) Respond(ctx context.Context, text string) (agent.Reply, error) {
	resp, err := b.client.Chat(ctx, b.sessionID, text)
	if err != nil {
		return agent.Reply{}, err
	}
	return resp.Reply, nil
}

func (b *RemoteBackend) TrainBatch(ctx context.Context, pairs []neural.Pair) (agent.Stats, error) {
	resp, err := b.client.TrainBatch(ctx, b.sessionID, pairs)
	if err != nil {
		return agent.Stats{}, err
	}
	return resp.Stats, nil
}

func (b *RemoteBackend) Stats(ctx context.Context) (agent.Stats, error) {
	resp, err := b.client.Stats(ctx, b.sessionID)
	if err != nil {
		return agent.Stats{}, err
	}
	return resp.Stats, nil
}

func (b *RemoteBackend) Examples(ctx context.Context) ([]neural.Pair, error) {
	return b.client.Examples(ctx, b.sessionID)
}

func (b *RemoteBackend) Save(ctx context.Context) (string, error) {
	return b.client.SaveModel(ctx, b.sessionID)
}

func (b *RemoteBackend) Load(ctx context.Context, model string) (agent.Stats, error) {
	resp, err := b.client.LoadModel(ctx, b.sessionID, model)
	if err != nil {
		return agent.Stats{}, err
	}
	return resp.Stats, nil
}

func (b *RemoteBackend) Reset(ctx context.Context) (agent.Stats, error) {
	resp, err := b.client.Reset(ctx, b.sessionID)
	if err != nil {
		return agent.Stats{}, err
	}
	return resp.Stats, nil
}
