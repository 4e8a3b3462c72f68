package worksettings

import "context"

type WorkSettingsService interface {
	GetSettings(ctx context.Context, workspaceID string) (WorkSettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (WorkSettingsResponse, error)

	ListWifiNetworks(ctx context.Context, workspaceID string) ([]WifiNetworkResponse, error)
	CreateWifiNetwork(ctx context.Context, req CreateWifiNetworkRequest) (WifiNetworkResponse, error)
	UpdateWifiNetwork(ctx context.Context, req UpdateWifiNetworkRequest) (WifiNetworkResponse, error)
	DeleteWifiNetwork(ctx context.Context, workspaceID, id string) error
	VerifyWifi(ctx context.Context, req VerifyWifiRequest) (VerifyWifiResponse, error)
}
