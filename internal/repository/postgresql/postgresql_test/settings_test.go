package postgresql_test

import (
	"context"
	"testing"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkSettingsRepository_Upsert(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := postgresql.NewWorkSettingsRepository(testDB)

	_, err := repo.Get(ctx, "ws1")
	assert.ErrorIs(t, err, worksettings.ErrSettingsNotFound)

	s := worksettings.DefaultSettings("ws1", "Asia/Seoul")
	s.OfficeIPWhitelist = []string{"203.0.113.5", "10.0.0.0/8"}
	s.LatePolicy.DeductionPerLate = decimal.RequireFromString("12500.50")
	_, err = repo.Upsert(ctx, s)
	require.NoError(t, err)

	start, end := "10:00", "16:00"
	s.Type = worksettings.WorkTypeFlexible
	s.CoreTimeStart, s.CoreTimeEnd = &start, &end
	_, err = repo.Upsert(ctx, s)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, worksettings.WorkTypeFlexible, got.Type)
	assert.Equal(t, []string{"203.0.113.5", "10.0.0.0/8"}, got.OfficeIPWhitelist)
	assert.True(t, got.LatePolicy.DeductionPerLate.Equal(decimal.RequireFromString("12500.5")))
	require.NotNil(t, got.CoreTimeStart)
	assert.Equal(t, "10:00", *got.CoreTimeStart)
	assert.Equal(t, "Asia/Seoul", got.Timezone)
}

func TestWifiNetworkRepository_CRUD(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := postgresql.NewWifiNetworkRepository(testDB)

	n, err := repo.Create(ctx, worksettings.WifiNetwork{
		ID:          newID(),
		WorkspaceID: "ws1",
		SSID:        "Office-5G",
		IsActive:    true,
		CreatedBy:   "admin-1",
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, worksettings.WifiNetwork{ID: newID(), WorkspaceID: "ws1", SSID: "Office-5G", CreatedBy: "admin-1"})
	assert.ErrorIs(t, err, worksettings.ErrWifiNetworkExists)

	n.IsActive = false
	updated, err := repo.Update(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", updated.CreatedBy)

	active, err := repo.ListActive(ctx, "ws1")
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.List(ctx, "ws1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "ws1", n.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "ws1", n.ID), worksettings.ErrWifiNetworkNotFound)
	_, err = repo.GetByID(ctx, "ws1", n.ID)
	assert.ErrorIs(t, err, worksettings.ErrWifiNetworkNotFound)
}
