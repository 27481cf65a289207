package dropbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
)

const (
	ProviderName = "dropbox"

	DefaultAuthorizeURL = "https://www.dropbox.com/oauth2/authorize"

	// Tokens are treated as expired this long before Dropbox says they are.
	expirySkew = time.Minute
	cacheKey   = "oauth:dropbox:access_token"
)

// ErrNotConnected means no Dropbox account has been linked yet.
var ErrNotConnected = errors.New("dropbox account not connected")

// TokenProvider supplies bearer tokens to the client. Invalidate is called
// after the API rejected the current token.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// TokenStore persists the OAuth record between restarts.
type TokenStore interface {
	GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error)
	SaveOAuthToken(ctx context.Context, token *models.OAuthToken) error
}

// TokenCache shares the access token between server instances.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StaticTokenProvider serves a long-lived token from configuration.
type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) AccessToken(context.Context) (string, error) {
	if p.token == "" {
		return "", ErrNotConnected
	}
	return p.token, nil
}

func (p *StaticTokenProvider) Invalidate(context.Context) error { return nil }

type OAuthConfig struct {
	AppKey       string
	AppSecret    string
	TokenURL     string
	AuthorizeURL string
	RedirectURI  string
	// RefreshToken seeds the store on first use when no record exists yet.
	RefreshToken string
}

// OAuthTokenProvider refreshes short-lived access tokens with the stored
// refresh token. Refreshes are serialized so concurrent callers share one.
type OAuthTokenProvider struct {
	cfg        OAuthConfig
	store      TokenStore
	cache      TokenCache
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	current *models.OAuthToken
}

// NewOAuthTokenProvider builds a provider; cache may be nil.
func NewOAuthTokenProvider(cfg OAuthConfig, store TokenStore, cache TokenCache) *OAuthTokenProvider {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	return &OAuthTokenProvider{
		cfg:        cfg,
		store:      store,
		cache:      cache,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (p *OAuthTokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache != nil {
		token, ok, err := p.cache.Get(ctx, cacheKey)
		if err != nil {
			log.Printf("dropbox: token cache get failed: %v", err)
		} else if ok {
			return token, nil
		}
	}

	if err := p.loadLocked(ctx); err != nil {
		return "", err
	}

	if p.current.AccessToken != "" && !p.expiredLocked() {
		p.cacheLocked(ctx)
		return p.current.AccessToken, nil
	}

	if err := p.refreshLocked(ctx); err != nil {
		return "", err
	}
	return p.current.AccessToken, nil
}

func (p *OAuthTokenProvider) Invalidate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.current.AccessToken = ""
	}
	if p.cache != nil {
		if err := p.cache.Delete(ctx, cacheKey); err != nil {
			log.Printf("dropbox: token cache delete failed: %v", err)
		}
	}
	return nil
}

// AuthorizeURL is where an admin is sent to link the Dropbox account.
func (p *OAuthTokenProvider) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.AppKey)
	q.Set("response_type", "code")
	q.Set("token_access_type", "offline")
	if p.cfg.RedirectURI != "" {
		q.Set("redirect_uri", p.cfg.RedirectURI)
	}
	if state != "" {
		q.Set("state", state)
	}
	return p.cfg.AuthorizeURL + "?" + q.Encode()
}

// ExchangeCode completes the authorization-code grant and stores the result.
func (p *OAuthTokenProvider) ExchangeCode(ctx context.Context, code string) (*models.OAuthToken, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	if p.cfg.RedirectURI != "" {
		form.Set("redirect_uri", p.cfg.RedirectURI)
	}

	resp, err := p.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}
	if resp.RefreshToken == "" {
		return nil, fmt.Errorf("token response has no refresh_token")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tok := &models.OAuthToken{
		Provider:     ProviderName,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    p.expiresAt(resp.ExpiresIn),
	}
	if err := p.store.SaveOAuthToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	p.current = tok
	p.cacheLocked(ctx)
	return tok, nil
}

func (p *OAuthTokenProvider) loadLocked(ctx context.Context) error {
	if p.current != nil {
		return nil
	}

	tok, err := p.store.GetOAuthToken(ctx, ProviderName)
	switch {
	case err == nil:
		p.current = tok
	case errors.Is(err, database.ErrNotFound) && p.cfg.RefreshToken != "":
		p.current = &models.OAuthToken{Provider: ProviderName, RefreshToken: p.cfg.RefreshToken}
	case errors.Is(err, database.ErrNotFound):
		return ErrNotConnected
	default:
		return fmt.Errorf("failed to load token: %w", err)
	}
	return nil
}

func (p *OAuthTokenProvider) expiredLocked() bool {
	exp := p.current.ExpiresAt
	return exp != nil && !p.now().Before(exp.Add(-expirySkew))
}

func (p *OAuthTokenProvider) refreshLocked(ctx context.Context) error {
	if p.current.RefreshToken == "" {
		return ErrNotConnected
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", p.current.RefreshToken)

	resp, err := p.requestToken(ctx, form)
	if err != nil {
		return err
	}

	tok := &models.OAuthToken{
		Provider:     ProviderName,
		AccessToken:  resp.AccessToken,
		RefreshToken: p.current.RefreshToken,
		ExpiresAt:    p.expiresAt(resp.ExpiresIn),
	}
	if resp.RefreshToken != "" {
		tok.RefreshToken = resp.RefreshToken
	}
	if err := p.store.SaveOAuthToken(ctx, tok); err != nil {
		return fmt.Errorf("failed to save refreshed token: %w", err)
	}
	p.current = tok
	p.cacheLocked(ctx)
	log.Printf("dropbox: access token refreshed, expires_at=%v", tok.ExpiresAt)
	return nil
}

func (p *OAuthTokenProvider) cacheLocked(ctx context.Context) {
	if p.cache == nil || p.current.ExpiresAt == nil {
		return
	}
	ttl := p.current.ExpiresAt.Sub(p.now()) - expirySkew
	if ttl <= 0 {
		return
	}
	if err := p.cache.Set(ctx, cacheKey, p.current.AccessToken, ttl); err != nil {
		log.Printf("dropbox: token cache set failed: %v", err)
	}
}

func (p *OAuthTokenProvider) expiresAt(expiresIn int64) *time.Time {
	if expiresIn <= 0 {
		return nil
	}
	t := p.now().Add(time.Duration(expiresIn) * time.Second)
	return &t
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (p *OAuthTokenProvider) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.cfg.AppKey, p.cfg.AppSecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("token request failed: status %d: %s %s", resp.StatusCode, apiErr.Error, apiErr.ErrorDescription)
	}

	var result tokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}
	return &result, nil
}
