package supabase

import (
	"github.com/supabase-community/supabase-go"
	"shoot-workflow-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient returns nil without error when Supabase is not configured.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.SupabaseURL == "" || cfg.SupabasePublishableKey == "" {
		return nil, nil
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}
