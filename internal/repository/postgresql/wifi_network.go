package postgresql

import (
	"context"
	"fmt"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const wifiColumns = `id, workspace_id, ssid, bssid, location_name, is_active, created_by, created_at, updated_at`

type wifiNetworkRepository struct {
	db *database.DB
}

func NewWifiNetworkRepository(db *database.DB) worksettings.WifiNetworkRepository {
	return &wifiNetworkRepository{db: db}
}

func scanWifi(row pgx.Row) (worksettings.WifiNetwork, error) {
	var n worksettings.WifiNetwork
	err := row.Scan(&n.ID, &n.WorkspaceID, &n.SSID, &n.BSSID, &n.LocationName, &n.IsActive, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *wifiNetworkRepository) list(ctx context.Context, query string, workspaceID string) ([]worksettings.WifiNetwork, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wifi networks: %w", err)
	}
	defer rows.Close()

	networks := []worksettings.WifiNetwork{}
	for rows.Next() {
		n, err := scanWifi(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wifi network: %w", err)
		}
		networks = append(networks, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wifi networks: %w", err)
	}
	return networks, nil
}

// List implements worksettings.WifiNetworkRepository.
func (r *wifiNetworkRepository) List(ctx context.Context, workspaceID string) ([]worksettings.WifiNetwork, error) {
	return r.list(ctx, `SELECT `+wifiColumns+` FROM wifi_networks WHERE workspace_id = $1 ORDER BY created_at ASC`, workspaceID)
}

// ListActive implements worksettings.WifiNetworkRepository.
func (r *wifiNetworkRepository) ListActive(ctx context.Context, workspaceID string) ([]worksettings.WifiNetwork, error) {
	return r.list(ctx, `SELECT `+wifiColumns+` FROM wifi_networks WHERE workspace_id = $1 AND is_active ORDER BY created_at ASC`, workspaceID)
}

// GetByID implements worksettings.WifiNetworkRepository.
func (r *wifiNetworkRepository) GetByID(ctx context.Context, workspaceID, id string) (worksettings.WifiNetwork, error) {
	q := GetQuerier(ctx, r.db)

	n, err := scanWifi(q.QueryRow(ctx, `SELECT `+wifiColumns+` FROM wifi_networks WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return worksettings.WifiNetwork{}, worksettings.ErrWifiNetworkNotFound
		}
		return worksettings.WifiNetwork{}, fmt.Errorf("failed to get wifi network: %w", err)
	}
	return n, nil
}

// Create implements worksettings.WifiNetworkRepository.
func (r *wifiNetworkRepository) Create(ctx context.Context, n worksettings.WifiNetwork) (worksettings.WifiNetwork, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO wifi_networks (id, workspace_id, ssid, bssid, location_name, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		n.ID, n.WorkspaceID, n.SSID, n.BSSID, n.LocationName, n.IsActive, n.CreatedBy,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return worksettings.WifiNetwork{}, worksettings.ErrWifiNetworkExists
		}
		return worksettings.WifiNetwork{}, fmt.Errorf("failed to create wifi network: %w", err)
	}
	return n, nil
}

// Update implements worksettings.WifiNetworkRepository.
func (r *wifiNetworkRepository) Update(ctx context.Context, n worksettings.WifiNetwork) (worksettings.WifiNetwork, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		UPDATE wifi_networks
		SET ssid = $3, bssid = $4, location_name = $5, is_active = $6, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING created_by, created_at, updated_at`,
		n.WorkspaceID, n.ID, n.SSID, n.BSSID, n.LocationName, n.IsActive,
	).Scan(&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return worksettings.WifiNetwork{}, worksettings.ErrWifiNetworkNotFound
		}
		if isUniqueViolation(err) {
			return worksettings.WifiNetwork{}, worksettings.ErrWifiNetworkExists
		}
		return worksettings.WifiNetwork{}, fmt.Errorf("failed to update wifi network: %w", err)
	}
	return n, nil
}

// Delete implements worksettings.WifiNetworkRepository.
func (r *wifiNetworkRepository) Delete(ctx context.Context, workspaceID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM wifi_networks WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete wifi network: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return worksettings.ErrWifiNetworkNotFound
	}
	return nil
}
