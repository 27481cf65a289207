package dropbox

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/blobstore"
)

// rotatingTokens hands out "token-1", "token-2", ... advancing on Invalidate.
type rotatingTokens struct {
	n           int32
	invalidated int32
}

func (r *rotatingTokens) AccessToken(context.Context) (string, error) {
	return "token-" + string(rune('1'+atomic.LoadInt32(&r.n))), nil
}

func (r *rotatingTokens) Invalidate(context.Context) error {
	atomic.AddInt32(&r.n, 1)
	atomic.AddInt32(&r.invalidated, 1)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenProvider) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/api", srv.URL+"/content", tokens)
	c.SetBackoffs(time.Millisecond, time.Millisecond, time.Millisecond)
	return c
}

func TestCreateFolder(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files/create_folder_v2", r.URL.Path)
		assert.Equal(t, "Bearer static", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPath = body["path"].(string)
		w.Write([]byte(`{"metadata":{"name":"P-1-Main"}}`))
	}, NewStaticTokenProvider("static"))

	res, err := c.CreateFolder(context.Background(), "/RealEstatePhotos/ToDo/2025-01-18/P-1-Main")
	require.NoError(t, err)
	assert.Equal(t, blobstore.FolderCreated, res)
	assert.Equal(t, "/RealEstatePhotos/ToDo/2025-01-18/P-1-Main", gotPath)
}

func TestCreateFolderConflictIsAlreadyExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error_summary":"path/conflict/folder/..","error":{".tag":"path"}}`))
	}, NewStaticTokenProvider("static"))

	res, err := c.CreateFolder(context.Background(), "/a")
	require.NoError(t, err)
	assert.Equal(t, blobstore.FolderAlreadyExists, res)
}

func TestUploadSendsHeaderArgs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/files/upload", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		arg := r.Header.Get("Dropbox-API-Arg")
		for _, ch := range arg {
			require.Less(t, ch, rune(128), "header must be ASCII")
		}
		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(arg), &parsed))
		assert.Equal(t, "/ToDo/TODO_1_café.jpg", parsed["path"])
		assert.Equal(t, "add", parsed["mode"])

		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "jpegbytes", string(data))
		w.Write([]byte(`{"id":"id:abc","path_display":"/ToDo/TODO_1_café.jpg"}`))
	}, NewStaticTokenProvider("static"))

	obj, err := c.Upload(context.Background(), "/ToDo/TODO_1_café.jpg", []byte("jpegbytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "id:abc", obj.ID)
	assert.Equal(t, "/ToDo/TODO_1_café.jpg", obj.Path)
}

func TestUploadReturnsRenamedPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"id:def","path_display":"/ToDo/TODO_1_a (1).jpg"}`))
	}, NewStaticTokenProvider("static"))

	obj, err := c.Upload(context.Background(), "/ToDo/TODO_1_a.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "id:def", obj.ID)
	assert.Equal(t, "/ToDo/TODO_1_a (1).jpg", obj.Path)
}

func TestUnauthorizedRefreshesOnce(t *testing.T) {
	var calls int32
	tokens := &rotatingTokens{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") == "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error_summary":"expired_access_token/"}`))
			return
		}
		w.Write([]byte(`{}`))
	}, tokens)

	err := c.Move(context.Background(), "/a/x.jpg", "/b/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.invalidated))
}

func TestUnauthorizedTwiceIsAuthError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_summary":"invalid_access_token/"}`))
	}, &rotatingTokens{})

	err := c.Delete(context.Background(), "/a")
	require.Error(t, err)
	assert.True(t, blobstore.IsKind(err, blobstore.KindAuth))
	assert.NotContains(t, err.Error(), "token-1")
}

func TestTransientErrorsAreRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("file-bytes"))
	}, NewStaticTokenProvider("static"))

	data, err := c.Download(context.Background(), "/Completed/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "file-bytes", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error_summary":"from_lookup/not_found/.."}`))
	}, NewStaticTokenProvider("static"))

	err := c.Copy(context.Background(), "/missing.jpg", "/ToDo/missing.jpg")
	require.Error(t, err)
	assert.True(t, blobstore.IsKind(err, blobstore.KindNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryWithBackoffExhausted(t *testing.T) {
	c := NewClient("", "", NewStaticTokenProvider("x"))
	c.SetBackoffs(time.Millisecond)

	calls := 0
	err := c.RetryWithBackoff(context.Background(), func() error {
		calls++
		return &blobstore.Error{Provider: "dropbox", Op: "move", Kind: blobstore.KindTransient}
	}, 3)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestHeaderSafeJSON(t *testing.T) {
	out, err := headerSafeJSON(map[string]string{"path": "/é/😀"})
	require.NoError(t, err)
	assert.Equal(t, `{"path":"/\u00e9/\ud83d\ude00"}`, out)
	assert.False(t, strings.ContainsFunc(out, func(r rune) bool { return r > 127 }))
}
