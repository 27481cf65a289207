// Package fakes holds in-memory stand-ins for remote storage, for tests.
package fakes

import (
	"context"
	"errors"
	"strings"
	"sync"

	"shoot-workflow-backend/internal/blobstore"
)

// BlobStore is an in-memory blobstore.Store that records every call as
// "op path".
type BlobStore struct {
	mu      sync.Mutex
	Folders map[string]bool
	Objects map[string][]byte
	Calls   []string
	// Fail makes calls whose "op path" contains the key return the error.
	Fail map[string]error
}

func NewBlobStore() *BlobStore {
	return &BlobStore{
		Folders: map[string]bool{},
		Objects: map[string][]byte{},
		Fail:    map[string]error{},
	}
}

func (f *BlobStore) record(op, p string) error {
	f.Calls = append(f.Calls, op+" "+p)
	for key, err := range f.Fail {
		if strings.Contains(op+" "+p, key) {
			return err
		}
	}
	return nil
}

// Count returns how many calls of op were made.
func (f *BlobStore) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, op+" ") {
			n++
		}
	}
	return n
}

func (f *BlobStore) Has(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Objects[p]
	return ok
}

func (f *BlobStore) Put(p string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[p] = data
}

func (f *BlobStore) Name() string { return "fake" }

func (f *BlobStore) CreateFolder(_ context.Context, p string) (blobstore.FolderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create_folder", p); err != nil {
		return 0, err
	}
	if f.Folders[p] {
		return blobstore.FolderAlreadyExists, nil
	}
	f.Folders[p] = true
	return blobstore.FolderCreated, nil
}

func (f *BlobStore) Upload(_ context.Context, p string, data []byte, _ string) (blobstore.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("upload", p); err != nil {
		return blobstore.Object{}, err
	}
	if _, ok := f.Objects[p]; ok {
		return blobstore.Object{}, &blobstore.Error{Provider: "fake", Op: "upload", Path: p, Kind: blobstore.KindConflict}
	}
	f.Objects[p] = append([]byte(nil), data...)
	return blobstore.Object{ID: "id:" + p, Path: p}, nil
}

func (f *BlobStore) Move(_ context.Context, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("move", from); err != nil {
		return err
	}
	data, ok := f.Objects[from]
	if !ok {
		return notFound("move", from)
	}
	delete(f.Objects, from)
	f.Objects[to] = data
	return nil
}

func (f *BlobStore) Copy(_ context.Context, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("copy", from); err != nil {
		return err
	}
	data, ok := f.Objects[from]
	if !ok {
		return notFound("copy", from)
	}
	f.Objects[to] = append([]byte(nil), data...)
	return nil
}

func (f *BlobStore) Download(_ context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("download", p); err != nil {
		return nil, err
	}
	data, ok := f.Objects[p]
	if !ok {
		return nil, notFound("download", p)
	}
	return data, nil
}

func (f *BlobStore) Delete(_ context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete", p); err != nil {
		return err
	}
	delete(f.Objects, p)
	return nil
}

func notFound(op, p string) error {
	return &blobstore.Error{Provider: "fake", Op: op, Path: p, Kind: blobstore.KindNotFound}
}

// ArtifactStore is an in-memory artifacts.Store. Locators are
// "/artifacts/{key}".
type ArtifactStore struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{Data: map[string][]byte{}}
}

func (m *ArtifactStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = data
	return "/artifacts/" + key, nil
}

func (m *ArtifactStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Data[key]
	if !ok {
		return nil, errors.New("artifact not found")
	}
	return d, nil
}

func (m *ArtifactStore) Name() string { return "memory" }
