package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/sipcourse-backend/pkg/config"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	token, err := manager.Generate(ctx, userID, "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stored := store.data["sess:access-123"]; !strings.HasSuffix(stored, "|"+token) || !strings.HasPrefix(stored, userID.String()) {
		t.Fatalf("unexpected stored session %q", stored)
	}
	if store.ttls["sess:access-123"] != time.Hour {
		t.Fatalf("expected refresh ttl to be applied")
	}

	if _, err := manager.Rotate(ctx, "access-123", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	rotation, err := manager.Rotate(ctx, "access-123", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotation.UserID != userID {
		t.Fatalf("rotation lost the user binding: %s", rotation.UserID)
	}
	if _, exists := store.data["sess:access-123"]; exists {
		t.Fatalf("old access key left behind")
	}
	if ok, _ := manager.HasSession(ctx, rotation.AccessID); !ok {
		t.Fatalf("expected new session to exist")
	}

	if _, err := manager.Rotate(ctx, "access-123", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replayed refresh token must fail, got %v", err)
	}
}

func TestManagerRejectsCorruptSession(t *testing.T) {
	store := newMockStore()
	store.data["sess:a"] = "not-a-session"
	manager := newTestManager(store)

	if _, err := manager.Rotate(context.Background(), "a", "not-a-session"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, uuid.New(), "jti"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok, err := manager.HasSession(ctx, "jti"); err != nil || !ok {
		t.Fatalf("expected session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, "jti"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, err := manager.HasSession(ctx, "jti"); err != nil || ok {
		t.Fatalf("expected no session after revoke, ok=%v err=%v", ok, err)
	}
	if _, err := manager.HasSession(ctx, " "); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if _, err := manager.Generate(ctx, uuid.Nil, "jti"); err == nil {
		t.Fatal("expected error for nil user")
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{}); err == nil {
		t.Fatal("expected error without redis client")
	}
}
