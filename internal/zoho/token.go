package zoho

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pj_commission_backend/internal/zoho/repository"

	"golang.org/x/sync/singleflight"
)

// ErrNotConnected means no CRM connection has been established: there is no
// stored token row, or the row carries no refresh token.
var ErrNotConnected = errors.New("zoho account not connected")

// refreshWindow is how close to expiry a cached access token may get before a
// refresh is forced. The margin avoids handing out a token that expires while
// a request is in flight.
const refreshWindow = 60 * time.Second

// TokenStore persists the singleton OAuth token record.
type TokenStore interface {
	Get(ctx context.Context) (repository.OAuthToken, bool, error)
	UpdateAccess(ctx context.Context, accessToken string, expiresAt time.Time) error
}

// TokenRefresher performs the OAuth refresh-token exchange.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (TokenGrant, error)
}

// TokenCache hands out a valid access token, refreshing it through the OAuth
// endpoint when the cached one is near expiry. Concurrent refreshes are
// collapsed into a single in-flight exchange; losers reuse the winner's
// result.
type TokenCache struct {
	store     TokenStore
	refresher TokenRefresher
	group     singleflight.Group
	now       func() time.Time
}

// NewTokenCache creates a token cache over the given store and refresher.
func NewTokenCache(store TokenStore, refresher TokenRefresher) *TokenCache {
	return &TokenCache{
		store:     store,
		refresher: refresher,
		now:       time.Now,
	}
}

// AccessToken returns a usable access token. On a cache hit no network call
// and no persistence write happen. On refresh, exactly one write persists the
// new access token and expiry; the refresh token is never modified here.
func (c *TokenCache) AccessToken(ctx context.Context) (string, error) {
	token, found, err := c.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load zoho token: %w", err)
	}
	if !found || token.RefreshToken == "" {
		return "", ErrNotConnected
	}

	if token.AccessToken != "" && token.ExpiresAt.Sub(c.now()) > refreshWindow {
		return token.AccessToken, nil
	}

	result, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		grant, err := c.refresher.RefreshAccessToken(ctx, token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("refresh access token: %w", err)
		}

		expiresAt := c.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
		if err := c.store.UpdateAccess(ctx, grant.AccessToken, expiresAt); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}

		return grant.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}
