package httpapi

import (
	"context"
	"testing"
	"time"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/session"
	"luminapos/backend/internal/store"
)

type fakeCredentialStore struct {
	profiles map[string]domain.UserProfile
	hashes   map[string]string
}

func (f *fakeCredentialStore) GetCredentials(_ context.Context, email string) (domain.UserProfile, string, error) {
	profile, ok := f.profiles[email]
	if !ok {
		return domain.UserProfile{}, "", store.ErrNotFound
	}
	return profile, f.hashes[email], nil
}

func TestDemoLoginSkipsPasswordCheck(t *testing.T) {
	auth := NewAuthManager("test-secret", time.Hour, nil)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "Demo"})
	if err != nil {
		t.Fatalf("demo login failed: %v", err)
	}
	if resp.Profile.ID != session.DemoUserID {
		t.Fatalf("expected demo profile, got %+v", resp.Profile)
	}
	if resp.Profile.Role != "admin" {
		t.Fatalf("expected admin role, got %q", resp.Profile.Role)
	}

	parsed, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if parsed.ID != session.DemoUserID || parsed.Role != "admin" {
		t.Fatalf("unexpected claims %+v", parsed)
	}
}

func TestDemoDomainAddressIsDemo(t *testing.T) {
	auth := NewAuthManager("test-secret", time.Hour, nil)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "maria@demo.posgo"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Profile.ID != session.DemoUserID {
		t.Fatalf("expected demo profile, got %+v", resp.Profile)
	}
}

func TestLoginVerifiesStoredHash(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	creds := &fakeCredentialStore{
		profiles: map[string]domain.UserProfile{
			"maria@bodega.pe": {ID: "u1", Email: "maria@bodega.pe", Role: "cashier"},
		},
		hashes: map[string]string{"maria@bodega.pe": hash},
	}
	auth := NewAuthManager("test-secret", time.Hour, creds)
	ctx := context.Background()

	resp, err := auth.Login(ctx, domain.LoginRequest{Username: "Maria@Bodega.pe", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Profile.ID != "u1" {
		t.Fatalf("unexpected profile %+v", resp.Profile)
	}

	if _, err := auth.Login(ctx, domain.LoginRequest{Username: "maria@bodega.pe", Password: "wrong"}); err == nil {
		t.Fatalf("expected wrong password rejected")
	}
	if _, err := auth.Login(ctx, domain.LoginRequest{Username: "nobody@bodega.pe", Password: "x"}); err == nil {
		t.Fatalf("expected unknown user rejected")
	}
}

func TestLoginWithoutCredentialStoreRejectsRealUsers(t *testing.T) {
	auth := NewAuthManager("test-secret", time.Hour, nil)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "maria@bodega.pe", Password: "x"}); err == nil {
		t.Fatalf("expected rejection without a credential store")
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthManager("secret-a", time.Hour, nil)
	verifier := NewAuthManager("secret-b", time.Hour, nil)

	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "demo"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := NewAuthManager("test-secret", time.Hour, nil)

	expired, err := auth.sign(domain.UserProfile{ID: "u1"}, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := auth.ParseToken(expired); err == nil {
		t.Fatalf("expected expired token rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	auth := NewAuthManager("test-secret", time.Hour, nil)

	if _, err := auth.ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected garbage rejected")
	}
}
