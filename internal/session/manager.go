// Package session manages one cart engine per user session for the gateway.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/scentcart/internal/engine"
)

// Factory builds the cart engine for a session.
type Factory func(sessionID string) (*engine.Engine, error)

type entry struct {
	eng      *engine.Engine
	hydrate  sync.Once
	lastSeen time.Time
}

// Manager creates engines on first use, hydrates them once, and evicts
// sessions idle longer than the TTL.
type Manager struct {
	factory Factory
	ttl     time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager creates a Manager. A non-positive ttl disables eviction.
func NewManager(factory Factory, ttl time.Duration) *Manager {
	return &Manager{
		factory: factory,
		ttl:     ttl,
		entries: map[string]*entry{},
	}
}

// Get returns the engine for the session, creating and hydrating it on
// first access. Hydration failures are not fatal here: the engine keeps its
// snapshot fallback and surfaces the failure through its state.
func (m *Manager) Get(ctx context.Context, sessionID string) (*engine.Engine, error) {
	if sessionID == "" {
		return nil, errors.New("session ID required")
	}

	m.mu.Lock()
	e, ok := m.entries[sessionID]
	if !ok {
		eng, err := m.factory(sessionID)
		if err != nil {
			m.mu.Unlock()
			return nil, errors.Wrap(err, "create engine")
		}
		e = &entry{eng: eng}
		m.entries[sessionID] = e
	}
	e.lastSeen = time.Now()
	m.mu.Unlock()

	e.hydrate.Do(func() {
		if err := e.eng.Hydrate(ctx); err != nil {
			zctx.From(ctx).Warn("cart hydration failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	})
	return e.eng, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run evicts idle sessions until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *Manager) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.entries, id)
		}
	}
}
