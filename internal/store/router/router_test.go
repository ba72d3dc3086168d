package router

import (
	"context"
	"testing"
	"time"

	"luminapos/backend/internal/cache"
	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/session"
	"luminapos/backend/internal/store/local"
)

func newLocalOnlyRouter(templateCache cache.TemplateCache) *Router {
	sessions := session.NewManager(nil, nil)
	sessions.SetProfile(context.Background(), domain.UserProfile{ID: session.DemoUserID, Email: "demo@demo.posgo"})
	return New(local.New(), nil, templateCache, sessions, 5*time.Minute)
}

func TestGetDemoTemplateFallsBackToSeed(t *testing.T) {
	r := newLocalOnlyRouter(cache.NoopTemplateCache{})

	template := r.GetDemoTemplate(context.Background())

	if len(template) != 17 {
		t.Fatalf("expected 17 seed products, got %d", len(template))
	}
	last := template[len(template)-1]
	if !last.HasVariants || len(last.Variants) != 3 {
		t.Fatalf("expected the variant product in the seed, got %+v", last)
	}
}

func TestGetDemoTemplatePrefersCachedCopy(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryTemplateCache()
	cached := []domain.Product{{ID: "cached-1", Name: "Cached"}}
	if err := memCache.Set(ctx, "demo:template:products", cached, time.Minute); err != nil {
		t.Fatalf("cache set failed: %v", err)
	}
	r := newLocalOnlyRouter(memCache)

	template := r.GetDemoTemplate(ctx)

	if len(template) != 1 || template[0].ID != "cached-1" {
		t.Fatalf("expected cached template, got %+v", template)
	}
}

func TestFirstReadSeedsLocalStore(t *testing.T) {
	r := newLocalOnlyRouter(cache.NoopTemplateCache{})

	products := r.GetProducts(context.Background())

	if len(products) != 17 {
		t.Fatalf("expected seeded catalog, got %d products", len(products))
	}
}

func TestSaveDemoProductToTemplateWithoutCloud(t *testing.T) {
	ctx := context.Background()
	r := newLocalOnlyRouter(cache.NoopTemplateCache{})

	result := r.SaveDemoProductToTemplate(ctx, domain.Product{ID: "p-new", Name: "Nuevo"})

	if result.Status != SyncLocalOnly {
		t.Fatalf("expected local_only, got %s", result.Status)
	}
	if result.Warning == "" {
		t.Fatalf("expected a warning explaining the degraded sync")
	}

	found := false
	for _, p := range r.GetProducts(ctx) {
		if p.ID == "p-new" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the product saved locally despite missing cloud")
	}
}

func TestDeleteDemoProductWithoutCloud(t *testing.T) {
	ctx := context.Background()
	r := newLocalOnlyRouter(cache.NoopTemplateCache{})
	r.SaveDemoProductToTemplate(ctx, domain.Product{ID: "p-del", Name: "Borrar"})

	result := r.DeleteDemoProduct(ctx, "p-del")

	if result.Status != SyncLocalOnly {
		t.Fatalf("expected local_only, got %s", result.Status)
	}
	for _, p := range r.GetProducts(ctx) {
		if p.ID == "p-del" {
			t.Fatalf("expected product removed locally")
		}
	}
}

func TestRequestIdentityOutranksLoginSession(t *testing.T) {
	sessions := session.NewManager(nil, nil)
	sessions.SetProfile(context.Background(), domain.UserProfile{ID: "u1", Email: "maria@bodega.pe"})
	r := New(local.New(), nil, cache.NoopTemplateCache{}, sessions, 5*time.Minute)

	ctx := session.WithProfile(context.Background(), domain.UserProfile{ID: session.DemoUserID, Email: "demo@demo.posgo"})
	profile, ok := r.requestProfile(ctx)
	if !ok || profile.ID != session.DemoUserID {
		t.Fatalf("expected the request's own identity, got %+v", profile)
	}

	// Without a context identity the persisted login session is the
	// fallback.
	profile, ok = r.requestProfile(context.Background())
	if !ok || profile.ID != "u1" {
		t.Fatalf("expected the login session fallback, got %+v", profile)
	}
}

func TestResetDemoDataReseeds(t *testing.T) {
	ctx := context.Background()
	r := newLocalOnlyRouter(cache.NoopTemplateCache{})

	r.SaveTransaction(ctx, domain.Transaction{ID: "t1", Date: time.Now()})
	r.SaveProduct(ctx, domain.Product{ID: "p-extra", Name: "Extra"})

	if err := r.ResetDemoData(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if txs := r.GetTransactions(ctx); len(txs) != 0 {
		t.Fatalf("expected transactions cleared, got %d", len(txs))
	}
	products := r.GetProducts(ctx)
	if len(products) != 17 {
		t.Fatalf("expected catalog back to the template, got %d", len(products))
	}
}
