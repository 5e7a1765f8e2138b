package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-api/internal/domain"
)

// memStore mirrors the store contract: one record per email, conditional delete.
type memStore struct {
	mu      sync.Mutex
	byEmail map[string]domain.VerificationToken
}

func newMemStore() *memStore {
	return &memStore{byEmail: make(map[string]domain.VerificationToken)}
}

func (m *memStore) Put(_ context.Context, v *domain.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[v.Email] = *v
	return nil
}

func (m *memStore) Find(_ context.Context, token, email string, now time.Time) (*domain.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byEmail[email]
	if !ok || v.Token != token {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	if v.Expired(now) {
		return &v, domain.ErrTokenExpired
	}
	return &v, nil
}

func (m *memStore) Delete(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byEmail[email]
	if !ok || v.Token != token {
		return fmt.Errorf("verification already consumed: %w", domain.ErrNotFound)
	}
	delete(m.byEmail, email)
	return nil
}

func (m *memStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, v := range m.byEmail {
		if v.ExpiresAt < now.Unix() {
			delete(m.byEmail, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) records() []domain.VerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.VerificationToken, 0, len(m.byEmail))
	for _, v := range m.byEmail {
		out = append(out, v)
	}
	return out
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
