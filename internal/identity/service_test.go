package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/angelmondragon/sipcourse-backend/pkg/auth"
	"github.com/angelmondragon/sipcourse-backend/pkg/auth/session"
	"github.com/angelmondragon/sipcourse-backend/pkg/config"
	"github.com/angelmondragon/sipcourse-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/security"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
	tokens   map[string]string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]uuid.UUID{}, tokens: map[string]string{}}
}

func (m *memorySessions) Generate(_ context.Context, userID uuid.UUID, accessID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := "refresh-" + accessID
	m.sessions[accessID] = userID
	m.tokens[accessID] = token
	return token, nil
}

func (m *memorySessions) Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error) {
	m.mu.Lock()
	userID, ok := m.sessions[oldAccessID]
	valid := ok && m.tokens[oldAccessID] == provided
	if valid {
		delete(m.sessions, oldAccessID)
		delete(m.tokens, oldAccessID)
	}
	m.mu.Unlock()
	if !valid {
		return session.Rotation{}, session.ErrInvalidRefreshToken
	}
	accessID := session.NewAccessID()
	token, _ := m.Generate(ctx, userID, accessID)
	return session.Rotation{UserID: userID, AccessID: accessID, RefreshToken: token}, nil
}

func (m *memorySessions) Revoke(_ context.Context, accessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, accessID)
	delete(m.tokens, accessID)
	return nil
}

func (m *memorySessions) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type staticDomains []string

func (d staticDomains) AvailableDomains(context.Context) ([]string, error) {
	return d, nil
}

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "sipcourse", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60}
}

func passwordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func newTestService(t *testing.T) (Service, *Repository, *memorySessions) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	sessions := newMemorySessions()
	svc, err := NewService(ServiceParams{
		Users:          repo,
		Sessions:       sessions,
		Domains:        staticDomains{"Finance", "Tech"},
		JWTConfig:      jwtConfig(),
		PasswordConfig: passwordConfig(),
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func register(t *testing.T, svc Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		FullName: "Asha Learner",
	})
	require.NoError(t, err)
	return resp
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	svc, repo, sessions := newTestService(t)

	resp := register(t, svc, "  Asha@Example.com ")
	require.Equal(t, "asha@example.com", resp.User.Email)
	require.Equal(t, "asha", resp.User.Username)
	require.Empty(t, resp.User.Interests)
	require.EqualValues(t, 15*60, resp.ExpiresIn)
	require.Equal(t, 1, sessions.active())

	claims, err := pkgAuth.ParseAccessTokenAllowExpired(jwtConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.UserID)

	stored, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", stored.PasswordHash)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "asha@example.com")

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ASHA@example.com", Password: "another-pass", FullName: "Other", Username: "other"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "asha@other.com", Password: "another-pass", FullName: "Other"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "username clash, got %v", err)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "asha@example.com")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ASHA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "wrong"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginRehashesWhenParamsChange(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	cfg := passwordConfig()
	build := func(pc config.PasswordConfig) Service {
		svc, err := NewService(ServiceParams{
			Users: repo, Sessions: newMemorySessions(), Domains: staticDomains{"Tech"},
			JWTConfig: jwtConfig(), PasswordConfig: pc,
		})
		require.NoError(t, err)
		return svc
	}
	register(t, build(cfg), "asha@example.com")

	cfg.ArgonTime = 2
	_, err := build(cfg).Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	stored, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.False(t, security.NeedsRehash(stored.PasswordHash, cfg))
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	first := register(t, svc, "asha@example.com")

	next, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: first.AccessToken, RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, next.RefreshToken)
	require.Equal(t, 1, sessions.active())

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: first.AccessToken, RefreshToken: first.RefreshToken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "replayed refresh must fail, got %v", err)

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: "garbage", RefreshToken: next.RefreshToken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	resp := register(t, svc, "asha@example.com")
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(jwtConfig(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	require.Equal(t, 0, sessions.active())
	require.True(t, pkgerrors.IsCode(svc.Logout(context.Background(), ""), pkgerrors.CodeUnauthorized))
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := register(t, svc, "asha@example.com")

	user, err := svc.CurrentUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Asha Learner", user.FullName)

	_, err = svc.CurrentUser(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestToggleInterest(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := register(t, svc, "asha@example.com")
	ctx := context.Background()

	user, err := svc.ToggleInterest(ctx, resp.User.ID, "tech")
	require.NoError(t, err)
	require.Equal(t, []string{"Tech"}, user.Interests)

	user, err = svc.ToggleInterest(ctx, resp.User.ID, "Finance")
	require.NoError(t, err)
	require.Equal(t, []string{"Tech", "Finance"}, user.Interests)

	user, err = svc.ToggleInterest(ctx, resp.User.ID, "TECH")
	require.NoError(t, err)
	require.Equal(t, []string{"Finance"}, user.Interests)

	reloaded, err := svc.CurrentUser(ctx, resp.User.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Finance"}, reloaded.Interests)

	_, err = svc.ToggleInterest(ctx, resp.User.ID, "Cooking")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
