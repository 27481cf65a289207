package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"shoot-workflow-backend/internal/models"
)

// RealtimeClient publishes workflow events by inserting rows into a table
// that Supabase Realtime broadcasts to subscribers of the shoot.
type RealtimeClient struct {
	client *supabase.Client
	table  string
}

func NewRealtimeClient(client *supabase.Client, table string) *RealtimeClient {
	return &RealtimeClient{
		client: client,
		table:  table,
	}
}

type eventRow struct {
	ShootID string         `json:"shoot_id"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

func (r *RealtimeClient) Publish(ctx context.Context, event models.WorkflowEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := eventRow{
		ShootID: event.ShootID.String(),
		Event:   event.Event,
		Payload: event.Payload,
	}
	if row.Payload == nil {
		row.Payload = map[string]any{}
	}

	if _, _, err := r.client.From(r.table).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to publish %s for shoot %s: %w", event.Event, row.ShootID, err)
	}
	return nil
}
