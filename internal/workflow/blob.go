package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/metrics"
	"shoot-workflow-backend/internal/models"
)

const DefaultBlobTimeout = 30 * time.Second

// blobOps bounds every blob store call with a deadline and records it.
type blobOps struct {
	store   blobstore.Store
	timeout time.Duration
	metrics *metrics.Metrics
}

func newBlobOps(store blobstore.Store, timeout time.Duration, m *metrics.Metrics) blobOps {
	if timeout <= 0 {
		timeout = DefaultBlobTimeout
	}
	return blobOps{store: store, timeout: timeout, metrics: m}
}

func (b blobOps) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	b.metrics.ObserveBlobOp(b.store.Name(), op, start, err)
	return err
}

func (b blobOps) createFolder(ctx context.Context, path string) (blobstore.FolderResult, error) {
	var res blobstore.FolderResult
	err := b.do(ctx, "create_folder", func(ctx context.Context) error {
		var err error
		res, err = b.store.CreateFolder(ctx, path)
		return err
	})
	return res, err
}

func (b blobOps) upload(ctx context.Context, path string, data []byte, contentType string) (blobstore.Object, error) {
	var obj blobstore.Object
	err := b.do(ctx, "upload", func(ctx context.Context) error {
		var err error
		obj, err = b.store.Upload(ctx, path, data, contentType)
		return err
	})
	return obj, err
}

func (b blobOps) move(ctx context.Context, from, to string) error {
	return b.do(ctx, "move", func(ctx context.Context) error {
		return b.store.Move(ctx, from, to)
	})
}

func (b blobOps) copy(ctx context.Context, from, to string) error {
	return b.do(ctx, "copy", func(ctx context.Context) error {
		return b.store.Copy(ctx, from, to)
	})
}

func (b blobOps) download(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := b.do(ctx, "download", func(ctx context.Context) error {
		var err error
		data, err = b.store.Download(ctx, path)
		return err
	})
	return data, err
}

func (b blobOps) delete(ctx context.Context, path string) error {
	return b.do(ctx, "delete", func(ctx context.Context) error {
		return b.store.Delete(ctx, path)
	})
}

// AppendLog writes an audit row on repo, which is expected to be the
// transaction handle of the change being described.
func AppendLog(ctx context.Context, repo database.Repository, shootID, actor uuid.UUID, action, details string, meta map[string]any) error {
	entry := &models.WorkflowLog{
		ID:      uuid.New(),
		ShootID: shootID,
		UserID:  actor,
		Action:  action,
		Details: details,
	}
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		entry.Metadata = raw
	}
	return repo.AppendLog(ctx, entry)
}
