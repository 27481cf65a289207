package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"shoot-workflow-backend/internal/blobstore"
)

const (
	DefaultAPIURL     = "https://api.dropboxapi.com/2"
	DefaultContentURL = "https://content.dropboxapi.com/2"
)

// Client implements blobstore.Store against the Dropbox v2 HTTP API.
type Client struct {
	apiURL     string
	contentURL string
	tokens     TokenProvider
	httpClient *http.Client
	backoffs   []time.Duration
	maxRetries int
}

func NewClient(apiURL, contentURL string, tokens TokenProvider) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if contentURL == "" {
		contentURL = DefaultContentURL
	}
	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		contentURL: strings.TrimSuffix(contentURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoffs:   []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		maxRetries: 3,
	}
}

// SetBackoffs replaces the wait between retries of transient failures.
func (c *Client) SetBackoffs(backoffs ...time.Duration) {
	c.backoffs = backoffs
}

func (c *Client) Name() string { return ProviderName }

type apiErrorBody struct {
	ErrorSummary string `json:"error_summary"`
}

type fileMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PathDisplay string `json:"path_display"`
}

func (c *Client) CreateFolder(ctx context.Context, path string) (blobstore.FolderResult, error) {
	_, err := c.rpc(ctx, "create_folder", path, "/files/create_folder_v2", map[string]any{
		"path":       path,
		"autorename": false,
	})
	if blobstore.IsKind(err, blobstore.KindConflict) {
		return blobstore.FolderAlreadyExists, nil
	}
	if err != nil {
		return 0, err
	}
	return blobstore.FolderCreated, nil
}

// Upload adds the file without overwriting. Dropbox renames it on conflict,
// so the returned path is the one it was actually stored under.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (blobstore.Object, error) {
	body, err := c.content(ctx, "upload", path, "/files/upload", map[string]any{
		"path":       path,
		"mode":       "add",
		"autorename": true,
		"mute":       false,
	}, data)
	if err != nil {
		return blobstore.Object{}, err
	}

	var meta fileMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return blobstore.Object{}, &blobstore.Error{Provider: ProviderName, Op: "upload", Path: path, Kind: blobstore.KindUnknown, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	obj := blobstore.Object{ID: meta.ID, Path: path}
	if meta.PathDisplay != "" && meta.PathDisplay != path {
		log.Printf("dropbox: upload renamed path=%s stored_as=%s", path, meta.PathDisplay)
		obj.Path = meta.PathDisplay
	}
	return obj, nil
}

func (c *Client) Move(ctx context.Context, from, to string) error {
	_, err := c.rpc(ctx, "move", from, "/files/move_v2", map[string]any{
		"from_path":  from,
		"to_path":    to,
		"autorename": false,
	})
	return err
}

func (c *Client) Copy(ctx context.Context, from, to string) error {
	_, err := c.rpc(ctx, "copy", from, "/files/copy_v2", map[string]any{
		"from_path":  from,
		"to_path":    to,
		"autorename": false,
	})
	return err
}

func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	return c.content(ctx, "download", path, "/files/download", map[string]any{"path": path}, nil)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.rpc(ctx, "delete", path, "/files/delete_v2", map[string]any{"path": path})
	return err
}

// rpc calls an endpoint that takes and returns JSON.
func (c *Client) rpc(ctx context.Context, op, path, endpoint string, args any) ([]byte, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, &blobstore.Error{Provider: ProviderName, Op: op, Path: path, Kind: blobstore.KindUnknown, Err: err}
	}
	return c.call(ctx, op, path, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// content calls an endpoint that takes its arguments in the Dropbox-API-Arg
// header and streams file bytes in the body.
func (c *Client) content(ctx context.Context, op, path, endpoint string, args any, data []byte) ([]byte, error) {
	arg, err := headerSafeJSON(args)
	if err != nil {
		return nil, &blobstore.Error{Provider: ProviderName, Op: op, Path: path, Kind: blobstore.KindUnknown, Err: err}
	}
	return c.call(ctx, op, path, func() (*http.Request, error) {
		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentURL+endpoint, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Dropbox-API-Arg", arg)
		if data != nil {
			req.Header.Set("Content-Type", "application/octet-stream")
		}
		return req, nil
	})
}

func (c *Client) call(ctx context.Context, op, path string, build func() (*http.Request, error)) ([]byte, error) {
	var out []byte
	err := c.RetryWithBackoff(ctx, func() error {
		body, err := c.doAuthorized(ctx, op, path, build)
		if err != nil {
			return err
		}
		out = body
		return nil
	}, c.maxRetries)
	return out, err
}

// doAuthorized sends the request once, and once more with a fresh token if
// Dropbox rejected the first one.
func (c *Client) doAuthorized(ctx context.Context, op, path string, build func() (*http.Request, error)) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, &blobstore.Error{Provider: ProviderName, Op: op, Path: path, Kind: blobstore.KindAuth, Err: err}
		}

		req, err := build()
		if err != nil {
			return nil, &blobstore.Error{Provider: ProviderName, Op: op, Path: path, Kind: blobstore.KindUnknown, Err: fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Authorization", "Bearer "+token)

		body, err := c.do(req, op, path)
		if attempt == 0 && blobstore.IsKind(err, blobstore.KindAuth) {
			if invErr := c.tokens.Invalidate(ctx); invErr != nil {
				log.Printf("dropbox: invalidate token failed: %v", invErr)
			}
			continue
		}
		return body, err
	}
}

func (c *Client) do(req *http.Request, op, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &blobstore.Error{Provider: ProviderName, Op: op, Path: path, Kind: blobstore.KindTransient, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &blobstore.Error{Provider: ProviderName, Op: op, Path: path, Kind: blobstore.KindTransient, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}
	return nil, &blobstore.Error{
		Provider: ProviderName,
		Op:       op,
		Path:     path,
		Kind:     classify(resp.StatusCode, body),
		Err:      fmt.Errorf("status %d: %s", resp.StatusCode, summary(body)),
	}
}

func classify(status int, body []byte) blobstore.Kind {
	switch {
	case status == http.StatusUnauthorized:
		return blobstore.KindAuth
	case status == http.StatusTooManyRequests || status >= 500:
		return blobstore.KindTransient
	case status == http.StatusConflict:
		s := summary(body)
		switch {
		case strings.Contains(s, "not_found"):
			return blobstore.KindNotFound
		case strings.Contains(s, "conflict"):
			return blobstore.KindConflict
		case strings.Contains(s, "too_many_write_operations"):
			return blobstore.KindTransient
		}
	}
	return blobstore.KindUnknown
}

func summary(body []byte) string {
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorSummary != "" {
		return apiErr.ErrorSummary
	}
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}

// RetryWithBackoff retries fn while it fails with a transient blob error.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !blobstore.Temporary(err) || i == maxRetries-1 {
			break
		}

		if i < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(c.backoffs[i]):
			}
		}
	}
	return lastErr
}

// headerSafeJSON encodes v as JSON with every non-ASCII rune escaped, as
// HTTP headers must be ASCII.
func headerSafeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		raw = raw[size:]
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case r > 0xFFFF:
			r -= 0x10000
			fmt.Fprintf(&b, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String(), nil
}
