package session

import (
	"context"
	"errors"
	"testing"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/store"
	"luminapos/backend/internal/store/local"
)

type countingResolver struct {
	calls   int
	storeID string
}

func (r *countingResolver) LookupStoreID(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.storeID, nil
}

func TestIsDemoProfile(t *testing.T) {
	cases := []struct {
		profile domain.UserProfile
		want    bool
	}{
		{domain.UserProfile{ID: DemoUserID}, true},
		{domain.UserProfile{ID: "u1", Email: "maria@demo.posgo"}, true},
		{domain.UserProfile{ID: "u1", Email: "maria@bodega.pe"}, false},
		{domain.UserProfile{}, false},
	}
	for _, tc := range cases {
		if got := IsDemoProfile(tc.profile); got != tc.want {
			t.Fatalf("IsDemoProfile(%+v) = %v, want %v", tc.profile, got, tc.want)
		}
	}
}

func TestProfileContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := ProfileFromContext(ctx); ok {
		t.Fatalf("expected no profile on a bare context")
	}

	ctx = WithProfile(ctx, domain.UserProfile{ID: "u1", Role: "admin"})
	profile, ok := ProfileFromContext(ctx)
	if !ok || profile.ID != "u1" {
		t.Fatalf("expected u1 from context, got %+v ok=%v", profile, ok)
	}
}

func TestStoreIDCachedPerUser(t *testing.T) {
	resolver := &countingResolver{storeID: "store-1"}
	m := NewManager(resolver, nil)

	for i := 0; i < 3; i++ {
		id, err := m.StoreID(context.Background(), "u1")
		if err != nil {
			t.Fatalf("store id failed: %v", err)
		}
		if id != "store-1" {
			t.Fatalf("expected store-1, got %q", id)
		}
	}
	if resolver.calls != 1 {
		t.Fatalf("expected one resolver call, got %d", resolver.calls)
	}

	if _, err := m.StoreID(context.Background(), "u2"); err != nil {
		t.Fatalf("store id failed: %v", err)
	}
	if resolver.calls != 2 {
		t.Fatalf("expected a fresh resolution per user, got %d calls", resolver.calls)
	}
}

func TestStoreIDRequiresUserAndResolver(t *testing.T) {
	m := NewManager(nil, nil)

	if _, err := m.StoreID(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, err := m.StoreID(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error without a resolver")
	}
}

func TestClearDropsProfileAndCache(t *testing.T) {
	resolver := &countingResolver{storeID: "store-1"}
	m := NewManager(resolver, nil)
	ctx := context.Background()
	m.SetProfile(ctx, domain.UserProfile{ID: "u1"})
	if _, err := m.StoreID(ctx, "u1"); err != nil {
		t.Fatalf("store id failed: %v", err)
	}

	m.Clear(ctx)

	if _, ok := m.Profile(); ok {
		t.Fatalf("expected profile cleared")
	}
	if _, err := m.StoreID(ctx, "u1"); err != nil {
		t.Fatalf("store id failed: %v", err)
	}
	if resolver.calls != 2 {
		t.Fatalf("expected re-resolution after clear, got %d calls", resolver.calls)
	}
}

func TestSessionPersistedThroughStore(t *testing.T) {
	backing := local.New()
	ctx := context.Background()

	m := NewManager(nil, backing)
	m.SetProfile(ctx, domain.UserProfile{ID: "u1", Email: "maria@bodega.pe"})

	saved, err := backing.GetSession(ctx)
	if err != nil {
		t.Fatalf("expected session persisted, got %v", err)
	}
	if saved.ID != "u1" {
		t.Fatalf("unexpected persisted profile %+v", saved)
	}

	restored := NewManager(nil, backing)
	restored.Restore(ctx)
	profile, ok := restored.Profile()
	if !ok || profile.ID != "u1" {
		t.Fatalf("expected restored session, got %+v ok=%v", profile, ok)
	}

	m.Clear(ctx)
	if _, err := backing.GetSession(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected session cleared from the store, got %v", err)
	}
}
