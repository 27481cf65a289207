package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	storage "github.com/supabase-community/storage-go"
	"shoot-workflow-backend/internal/blobstore"
)

const (
	providerName = "supabase"
	// Object storage has no real directories; a placeholder object stands in.
	folderPlaceholder = ".keep"
)

// StorageClient implements blobstore.Store on a Supabase Storage bucket.
type StorageClient struct {
	client *storage.Client
	bucket string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	if supabaseURL == "" || bucket == "" {
		return nil, fmt.Errorf("supabase url and bucket are required")
	}
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{client: client, bucket: bucket}, nil
}

func (s *StorageClient) Name() string { return providerName }

// key maps a blob path onto a bucket object key, which has no leading slash.
func key(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (s *StorageClient) CreateFolder(ctx context.Context, folder string) (blobstore.FolderResult, error) {
	if err := ctx.Err(); err != nil {
		return 0, s.wrap("create_folder", folder, err)
	}

	contentType := "text/plain"
	upsert := false
	_, err := s.client.UploadFile(s.bucket, key(path.Join(folder, folderPlaceholder)), bytes.NewReader(nil), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		wrapped := s.wrap("create_folder", folder, err)
		if blobstore.IsKind(wrapped, blobstore.KindConflict) {
			return blobstore.FolderAlreadyExists, nil
		}
		return 0, wrapped
	}
	return blobstore.FolderCreated, nil
}

func (s *StorageClient) Upload(ctx context.Context, p string, data []byte, contentType string) (blobstore.Object, error) {
	if err := ctx.Err(); err != nil {
		return blobstore.Object{}, s.wrap("upload", p, err)
	}

	upsert := false
	opts := storage.FileOptions{Upsert: &upsert}
	if contentType != "" {
		opts.ContentType = &contentType
	}
	if _, err := s.client.UploadFile(s.bucket, key(p), bytes.NewReader(data), opts); err != nil {
		return blobstore.Object{}, s.wrap("upload", p, err)
	}
	return blobstore.Object{ID: key(p), Path: p}, nil
}

func (s *StorageClient) Move(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return s.wrap("move", from, err)
	}
	if _, err := s.client.MoveFile(s.bucket, key(from), key(to)); err != nil {
		return s.wrap("move", from, err)
	}
	return nil
}

// Copy downloads and re-uploads; the object keeps no link to its source.
func (s *StorageClient) Copy(ctx context.Context, from, to string) error {
	data, err := s.Download(ctx, from)
	if err != nil {
		return err
	}
	upsert := false
	if _, err := s.client.UploadFile(s.bucket, key(to), bytes.NewReader(data), storage.FileOptions{Upsert: &upsert}); err != nil {
		return s.wrap("copy", to, err)
	}
	return nil
}

func (s *StorageClient) Download(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.wrap("download", p, err)
	}
	data, err := s.client.DownloadFile(s.bucket, key(p))
	if err != nil {
		return nil, s.wrap("download", p, err)
	}
	return data, nil
}

func (s *StorageClient) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return s.wrap("delete", p, err)
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key(p)}); err != nil {
		return s.wrap("delete", p, err)
	}
	return nil
}

func (s *StorageClient) wrap(op, p string, err error) error {
	return &blobstore.Error{Provider: providerName, Op: op, Path: p, Kind: classify(err), Err: err}
}

func classify(err error) blobstore.Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return blobstore.KindTransient
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists"):
		return blobstore.KindConflict
	case strings.Contains(msg, "not found") || strings.Contains(msg, "not_found"):
		return blobstore.KindNotFound
	case strings.Contains(msg, "jwt") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid signature"):
		return blobstore.KindAuth
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "too many requests") || strings.Contains(msg, "bad gateway") ||
		strings.Contains(msg, "service unavailable"):
		return blobstore.KindTransient
	}
	return blobstore.KindUnknown
}
