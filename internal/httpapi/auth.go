package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/session"
	"luminapos/backend/internal/store"
)

// CredentialStore resolves a login e-mail to a profile and its stored
// password hash. The cloud store implements it; in local-only mode it is
// nil and only demo logins work.
type CredentialStore interface {
	GetCredentials(ctx context.Context, email string) (domain.UserProfile, string, error)
}

type AuthManager struct {
	secret      []byte
	tokenTTL    time.Duration
	credentials CredentialStore
}

type posClaims struct {
	jwtlib.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, credentials CredentialStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
		credentials: credentials,
	}
}

// Login authenticates a session. Demo identities (the demo username or
// any address on the demo mail domain) skip password verification and
// get the sandbox profile; everything else is checked against the
// credential store.
func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}

	profile, err := a.resolveProfile(ctx, username, req.Password)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(profile, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		Profile:     profile,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) resolveProfile(ctx context.Context, username string, password string) (domain.UserProfile, error) {
	if username == "demo" || strings.HasSuffix(username, "@demo.posgo") {
		return domain.UserProfile{
			ID:    session.DemoUserID,
			Email: "demo@demo.posgo",
			Name:  "Demo",
			Role:  "admin",
		}, nil
	}

	if a.credentials == nil {
		return domain.UserProfile{}, errors.New("invalid credentials")
	}

	profile, passwordHash, err := a.credentials.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserProfile{}, errors.New("invalid credentials")
		}
		return domain.UserProfile{}, err
	}
	if !verifyPassword(passwordHash, password) {
		return domain.UserProfile{}, errors.New("invalid credentials")
	}
	return profile, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.UserProfile, error) {
	claims := &posClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.UserProfile{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.UserProfile{}, errors.New("invalid token subject")
	}
	return domain.UserProfile{
		ID:    sub,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

func (a *AuthManager) sign(profile domain.UserProfile, expiresAt time.Time) (string, error) {
	claims := posClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "luminapos",
		},
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
