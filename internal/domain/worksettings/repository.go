package worksettings

import (
	"context"
	"errors"
	"fmt"
)

type WorkSettingsRepository interface {
	// Get returns ErrSettingsNotFound when the workspace never saved settings.
	Get(ctx context.Context, workspaceID string) (WorkSettings, error)
	Upsert(ctx context.Context, settings WorkSettings) (WorkSettings, error)
}

type WifiNetworkRepository interface {
	List(ctx context.Context, workspaceID string) ([]WifiNetwork, error)
	ListActive(ctx context.Context, workspaceID string) ([]WifiNetwork, error)
	GetByID(ctx context.Context, workspaceID, id string) (WifiNetwork, error)
	Create(ctx context.Context, network WifiNetwork) (WifiNetwork, error)
	Update(ctx context.Context, network WifiNetwork) (WifiNetwork, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

// LoadOrDefault reads a workspace's settings, falling back to
// DefaultSettings for workspaces that never saved any. An empty stored
// timezone is replaced by defaultTimezone.
func LoadOrDefault(ctx context.Context, repo WorkSettingsRepository, workspaceID, defaultTimezone string) (WorkSettings, error) {
	s, err := repo.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			return DefaultSettings(workspaceID, defaultTimezone), nil
		}
		return WorkSettings{}, fmt.Errorf("failed to get work settings: %w", err)
	}
	if s.Timezone == "" {
		s.Timezone = defaultTimezone
	}
	return s, nil
}
