// Package session tracks authenticated profiles and resolves which
// persistence mode each request maps to: demo identities hit the local
// store, real identities hit the cloud scope for their store. The
// per-request identity travels in the request context; the Manager only
// holds the persisted login session and the store-id cache.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"luminapos/backend/internal/domain"
)

const (
	// DemoUserID is the sentinel profile id issued to demo logins.
	DemoUserID = "test-user-demo"

	demoEmailSuffix = "@demo.posgo"

	// DemoTemplateID is the reserved store id holding the shared demo
	// catalog template in the cloud.
	DemoTemplateID = "00000000-0000-0000-0000-000000000000"
)

// IsDemoProfile reports whether a profile belongs to the demo mode, by
// sentinel id or by demo email domain.
func IsDemoProfile(p domain.UserProfile) bool {
	return p.ID == DemoUserID || strings.HasSuffix(p.Email, demoEmailSuffix)
}

type profileContextKey struct{}

// WithProfile attaches the authenticated profile to the request context.
// Persistence routing reads it from there, so concurrent requests with
// different identities never see each other's mode.
func WithProfile(ctx context.Context, profile domain.UserProfile) context.Context {
	return context.WithValue(ctx, profileContextKey{}, profile)
}

func ProfileFromContext(ctx context.Context) (domain.UserProfile, bool) {
	profile, ok := ctx.Value(profileContextKey{}).(domain.UserProfile)
	return profile, ok
}

// StoreIDResolver maps a user id to the store the user belongs to.
type StoreIDResolver interface {
	LookupStoreID(ctx context.Context, userID string) (string, error)
}

// SessionStore persists the login session across restarts. The local
// demo store implements it under its session key.
type SessionStore interface {
	GetSession(ctx context.Context) (domain.UserProfile, error)
	SaveSession(ctx context.Context, profile domain.UserProfile) error
	ClearSession(ctx context.Context) error
}

// Manager holds the persisted login session and memoizes resolved store
// ids per user so the profiles table is not hit on every request.
type Manager struct {
	mu       sync.RWMutex
	profile  *domain.UserProfile
	storeIDs map[string]string
	resolver StoreIDResolver
	store    SessionStore
}

func NewManager(resolver StoreIDResolver, store SessionStore) *Manager {
	return &Manager{
		resolver: resolver,
		store:    store,
		storeIDs: make(map[string]string),
	}
}

// Restore loads a previously persisted session, if any. Missing sessions
// are not an error.
func (m *Manager) Restore(ctx context.Context) {
	if m.store == nil {
		return
	}
	profile, err := m.store.GetSession(ctx)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.profile = &profile
	m.mu.Unlock()
}

// SetProfile installs and persists the login session.
func (m *Manager) SetProfile(ctx context.Context, profile domain.UserProfile) {
	m.mu.Lock()
	m.profile = &profile
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.SaveSession(ctx, profile); err != nil {
			log.Printf("[session] WARN: persisting session failed: %v", err)
		}
	}
}

func (m *Manager) Profile() (domain.UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return domain.UserProfile{}, false
	}
	return *m.profile, true
}

// StoreID resolves and caches the store id for one user. Demo identities
// have no store id; callers route them to the local store before asking.
func (m *Manager) StoreID(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("no user id")
	}

	m.mu.RLock()
	cached, ok := m.storeIDs[userID]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if m.resolver == nil {
		return "", fmt.Errorf("no store resolver configured")
	}
	storeID, err := m.resolver.LookupStoreID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve store id: %w", err)
	}

	m.mu.Lock()
	m.storeIDs[userID] = storeID
	m.mu.Unlock()
	return storeID, nil
}

// Clear drops the login session and the store-id cache.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.profile = nil
	m.storeIDs = make(map[string]string)
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.ClearSession(ctx); err != nil {
			log.Printf("[session] WARN: clearing session failed: %v", err)
		}
	}
}
