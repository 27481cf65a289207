package dropbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
)

type mapCache struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, key)
	return nil
}

func tokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "app-key", user)
		assert.Equal(t, "app-secret", pass)
		require.NoError(t, r.ParseForm())

		resp := map[string]any{"token_type": "bearer", "expires_in": 14400}
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
			resp["access_token"] = "access-" + string(rune('0'+n))
		case "authorization_code":
			assert.Equal(t, "the-code", r.Form.Get("code"))
			resp["access_token"] = "access-from-code"
			resp["refresh_token"] = "refresh-1"
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"unsupported_grant_type"}`))
			return
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(srvURL string, store TokenStore, cache TokenCache, bootstrap string) *OAuthTokenProvider {
	return NewOAuthTokenProvider(OAuthConfig{
		AppKey:       "app-key",
		AppSecret:    "app-secret",
		TokenURL:     srvURL,
		RedirectURI:  "https://app.example.com/dropbox/callback",
		RefreshToken: bootstrap,
	}, store, cache)
}

func TestAccessTokenRefreshesFromBootstrapToken(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	store := database.NewMemoryStore()
	p := newProvider(srv.URL, store, nil, "refresh-1")

	tok, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)

	// Still valid, so no second refresh.
	tok, err = p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	saved, err := store.GetOAuthToken(context.Background(), ProviderName)
	require.NoError(t, err)
	assert.Equal(t, "access-1", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
	require.NotNil(t, saved.ExpiresAt)
}

func TestInvalidateForcesRefresh(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	p := newProvider(srv.URL, database.NewMemoryStore(), nil, "refresh-1")

	_, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Invalidate(context.Background()))

	tok, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", tok)
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	store := database.NewMemoryStore()
	expired := time.Now().Add(30 * time.Second)
	require.NoError(t, store.SaveOAuthToken(context.Background(), &models.OAuthToken{
		Provider:     ProviderName,
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    &expired,
	}))
	p := newProvider(srv.URL, store, nil, "")

	tok, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)
}

func TestAccessTokenUsesSharedCache(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	cache := newMapCache()
	p := newProvider(srv.URL, database.NewMemoryStore(), cache, "refresh-1")

	_, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", cache.vals[cacheKey])
	assert.InDelta(t, (4*time.Hour - time.Minute).Seconds(), cache.ttls[cacheKey].Seconds(), 5)

	// A second instance sharing the cache never hits the token endpoint.
	other := newProvider(srv.URL, database.NewMemoryStore(), cache, "")
	tok, err := other.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.NoError(t, p.Invalidate(context.Background()))
	_, ok := cache.vals[cacheKey]
	assert.False(t, ok)
}

func TestNotConnected(t *testing.T) {
	p := newProvider("http://127.0.0.1:1", database.NewMemoryStore(), nil, "")
	_, err := p.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestExchangeCode(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	store := database.NewMemoryStore()
	p := newProvider(srv.URL, store, nil, "")

	tok, err := p.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access-from-code", tok.AccessToken)

	access, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-from-code", access)

	saved, err := store.GetOAuthToken(context.Background(), ProviderName)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
}

func TestAuthorizeURL(t *testing.T) {
	p := newProvider("http://unused", database.NewMemoryStore(), nil, "")
	u := p.AuthorizeURL("xyz")
	assert.Contains(t, u, DefaultAuthorizeURL+"?")
	assert.Contains(t, u, "client_id=app-key")
	assert.Contains(t, u, "token_access_type=offline")
	assert.Contains(t, u, "state=xyz")
}

func TestStaticTokenProvider(t *testing.T) {
	tok, err := NewStaticTokenProvider("fixed").AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", tok)

	_, err = NewStaticTokenProvider("").AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}
