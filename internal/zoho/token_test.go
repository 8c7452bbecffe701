package zoho

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pj_commission_backend/internal/zoho/repository"
)

type fakeTokenStore struct {
	mu      sync.Mutex
	token   repository.OAuthToken
	found   bool
	getErr  error
	updates int
}

func (f *fakeTokenStore) Get(context.Context) (repository.OAuthToken, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.found, f.getErr
}

func (f *fakeTokenStore) UpdateAccess(_ context.Context, accessToken string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.token.AccessToken = accessToken
	f.token.ExpiresAt = expiresAt
	return nil
}

type fakeRefresher struct {
	grant TokenGrant
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (f *fakeRefresher) RefreshAccessToken(context.Context, string) (TokenGrant, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return TokenGrant{}, f.err
	}
	return f.grant, nil
}

func TestTokenCache_CacheHit(t *testing.T) {
	store := &fakeTokenStore{
		token: repository.OAuthToken{
			RefreshToken: "refresh",
			AccessToken:  "cached",
			ExpiresAt:    time.Now().Add(10 * time.Minute),
		},
		found: true,
	}
	refresher := &fakeRefresher{}
	cache := NewTokenCache(store, refresher)

	token, err := cache.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "cached" {
		t.Fatalf("expected cached token, got %q", token)
	}
	if refresher.calls.Load() != 0 {
		t.Fatal("cache hit must not touch the network")
	}
	if store.updates != 0 {
		t.Fatal("cache hit must not write to the store")
	}
}

func TestTokenCache_RefreshNearExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeTokenStore{
		token: repository.OAuthToken{
			RefreshToken: "refresh",
			AccessToken:  "stale",
			ExpiresAt:    now.Add(30 * time.Second),
		},
		found: true,
	}
	refresher := &fakeRefresher{grant: TokenGrant{AccessToken: "fresh", ExpiresIn: 3600}}
	cache := NewTokenCache(store, refresher)
	cache.now = func() time.Time { return now }

	token, err := cache.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	if store.updates != 1 {
		t.Fatalf("expected exactly one persistence write, got %d", store.updates)
	}
	if !store.token.ExpiresAt.Equal(now.Add(3600 * time.Second)) {
		t.Fatalf("expected expiry now+3600s, got %v", store.token.ExpiresAt)
	}
	if store.token.RefreshToken != "refresh" {
		t.Fatal("refresh token must not be modified by a refresh")
	}
}

func TestTokenCache_NotConnected(t *testing.T) {
	cache := NewTokenCache(&fakeTokenStore{found: false}, &fakeRefresher{})
	if _, err := cache.AccessToken(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected for missing row, got %v", err)
	}

	cache = NewTokenCache(&fakeTokenStore{
		token: repository.OAuthToken{AccessToken: "orphan"},
		found: true,
	}, &fakeRefresher{})
	if _, err := cache.AccessToken(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected for missing refresh token, got %v", err)
	}
}

func TestTokenCache_RefreshFailure(t *testing.T) {
	store := &fakeTokenStore{
		token: repository.OAuthToken{
			RefreshToken: "refresh",
			AccessToken:  "stale",
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
		found: true,
	}
	refresher := &fakeRefresher{err: errors.New("invalid_grant")}
	cache := NewTokenCache(store, refresher)

	token, err := cache.AccessToken(context.Background())
	if err == nil {
		t.Fatal("expected refresh failure to surface")
	}
	if token != "" {
		t.Fatalf("a stale token must never be returned after a failed refresh, got %q", token)
	}
	if store.updates != 0 {
		t.Fatal("failed refresh must not write to the store")
	}
}

func TestTokenCache_ConcurrentRefreshCollapses(t *testing.T) {
	store := &fakeTokenStore{
		token: repository.OAuthToken{
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
		found: true,
	}
	refresher := &fakeRefresher{
		grant: TokenGrant{AccessToken: "fresh", ExpiresIn: 3600},
		delay: 50 * time.Millisecond,
	}
	cache := NewTokenCache(store, refresher)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			token, err := cache.AccessToken(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[slot] = token
		}(i)
	}
	wg.Wait()

	if got := refresher.calls.Load(); got != 1 {
		t.Fatalf("expected a single in-flight refresh, got %d", got)
	}
	for _, token := range results {
		if token != "fresh" {
			t.Fatalf("every caller must share the winner's token, got %q", token)
		}
	}
}
