package workflow

import (
	"context"
	"log"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/metrics"
	"shoot-workflow-backend/internal/models"
)

// Notifier receives workflow events once the change that caused them has
// committed.
type Notifier interface {
	Publish(ctx context.Context, event models.WorkflowEvent) error
}

type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, models.WorkflowEvent) error { return nil }

// StatusChange is one persisted shoot status transition.
type StatusChange struct {
	ShootID  uuid.UUID
	From     models.WorkflowStatus
	To       models.WorkflowStatus
	Override bool
	Actor    uuid.UUID
}

// FileChange is one persisted file stage transition. From is empty when the
// file was created.
type FileChange struct {
	File models.ShootFile
	From models.FileStage
}

// Changes accumulates what a unit of work did, for publishing after commit.
type Changes struct {
	Shoot   []StatusChange
	Files   []FileChange
	Folders []models.FolderMapping
}

func (c *Changes) addStatus(ch ...StatusChange) {
	c.Shoot = append(c.Shoot, ch...)
}

func (c *Changes) addFile(f *models.ShootFile, from models.FileStage) {
	c.Files = append(c.Files, FileChange{File: *f, From: from})
}

func (c *Changes) Merge(other Changes) {
	c.Shoot = append(c.Shoot, other.Shoot...)
	c.Files = append(c.Files, other.Files...)
	c.Folders = append(c.Folders, other.Folders...)
}

// Publisher fans committed changes out to metrics and the notifier. Publish
// failures are logged, never returned; the change itself already committed.
type Publisher struct {
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewPublisher(notifier Notifier, m *metrics.Metrics) *Publisher {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Publisher{notifier: notifier, metrics: m}
}

func (p *Publisher) Publish(ctx context.Context, ch Changes) {
	if len(ch.Folders) > 0 {
		folders := make([]map[string]string, 0, len(ch.Folders))
		for _, f := range ch.Folders {
			folders = append(folders, map[string]string{
				"folder_type":      string(f.FolderType),
				"service_category": string(f.ServiceCategory),
				"remote_path":      f.RemotePath,
			})
		}
		event := models.WorkflowEvent{
			ShootID: ch.Folders[0].ShootID,
			Event:   models.EventFoldersReady,
			Payload: map[string]any{"folders": folders},
		}
		if err := p.notifier.Publish(ctx, event); err != nil {
			log.Printf("workflow: publish folders event failed shoot_id=%s: %v", event.ShootID, err)
		}
	}

	for _, f := range ch.Files {
		p.metrics.ObserveFileTransition(string(f.From), string(f.File.WorkflowStage))
		event := models.WorkflowEvent{
			ShootID: f.File.ShootID,
			Event:   models.EventFileStage,
			Payload: map[string]any{
				"file_id":   f.File.ID.String(),
				"filename":  f.File.Filename,
				"old_stage": string(f.From),
				"new_stage": string(f.File.WorkflowStage),
			},
		}
		if err := p.notifier.Publish(ctx, event); err != nil {
			log.Printf("workflow: publish file event failed shoot_id=%s file_id=%s: %v", f.File.ShootID, f.File.ID, err)
		}
	}

	for _, s := range ch.Shoot {
		p.metrics.ObserveShootTransition(string(s.From), string(s.To), s.Override)
		event := models.WorkflowEvent{
			ShootID: s.ShootID,
			Event:   models.EventStatusChanged,
			Payload: map[string]any{
				"old_status": string(s.From),
				"new_status": string(s.To),
				"override":   s.Override,
			},
		}
		if err := p.notifier.Publish(ctx, event); err != nil {
			log.Printf("workflow: publish status event failed shoot_id=%s: %v", s.ShootID, err)
		}
	}
}
