package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/test/fakes"
)

// failingCommit runs the unit of work and then refuses to commit it.
type failingCommit struct {
	*database.MemoryStore
}

var errCommit = errors.New("commit failed")

func (s failingCommit) InTx(ctx context.Context, fn func(ctx context.Context, repo database.Repository) error) error {
	return s.MemoryStore.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		if err := fn(ctx, repo); err != nil {
			return err
		}
		return errCommit
	})
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.WorkflowEvent
}

func (r *recordingNotifier) Publish(_ context.Context, e models.WorkflowEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

type fixture struct {
	store     *database.MemoryStore
	blobs     *fakes.BlobStore
	artifacts *fakes.ArtifactStore
	notifier  *recordingNotifier
	folders   *Provisioner
	life      *Lifecycle
	admin     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     database.NewMemoryStore(),
		blobs:     fakes.NewBlobStore(),
		artifacts: fakes.NewArtifactStore(),
		notifier:  &recordingNotifier{},
		admin:     uuid.New(),
	}
	f.folders = NewProvisioner(f.blobs, "", time.Second, nil)
	f.life = NewLifecycle(LifecycleConfig{
		Store:       f.store,
		Blobs:       f.blobs,
		Provisioner: f.folders,
		Artifacts:   f.artifacts,
		Publisher:   NewPublisher(f.notifier, nil),
		BlobTimeout: time.Second,
	})
	return f
}

func (f *fixture) shoot(t *testing.T, serviceName string, mutate ...func(*models.Shoot)) *models.Shoot {
	t.Helper()
	svc := models.Service{ID: uuid.New(), Name: serviceName}
	f.store.AddService(svc)

	s := &models.Shoot{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		ServiceID:      svc.ID,
		Address:        "123 Main St.",
		City:           "Austin",
		State:          "TX",
		Zip:            "78701",
		ScheduledDate:  models.NullTime(time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)),
		ScheduledTime:  models.NullString("10:00"),
		Status:         models.ShootStatusScheduled,
		WorkflowStatus: models.WorkflowBooked,
		CreatedBy:      f.admin,
	}
	for _, m := range mutate {
		m(s)
	}
	require.NoError(t, f.store.CreateShoot(context.Background(), s))
	got, err := f.store.GetShoot(context.Background(), s.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) upload(t *testing.T, shootID uuid.UUID, name string) *models.ShootFile {
	t.Helper()
	file, err := f.life.UploadToTodo(context.Background(), shootID, Upload{Filename: name, Data: []byte("raw:" + name)}, f.admin, "")
	require.NoError(t, err)
	return file
}

func (f *fixture) status(t *testing.T, shootID uuid.UUID) models.WorkflowStatus {
	t.Helper()
	s, err := f.store.GetShoot(context.Background(), shootID)
	require.NoError(t, err)
	return s.WorkflowStatus
}

func (f *fixture) logs(t *testing.T, shootID uuid.UUID, action string) []models.WorkflowLog {
	t.Helper()
	all, err := f.store.ListLogs(context.Background(), shootID, 0)
	require.NoError(t, err)
	var out []models.WorkflowLog
	for _, l := range all {
		if l.Action == action {
			out = append(out, l)
		}
	}
	return out
}
