package postgresql

import (
	"context"
	"fmt"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workSettingsRepository struct {
	db *database.DB
}

func NewWorkSettingsRepository(db *database.DB) worksettings.WorkSettingsRepository {
	return &workSettingsRepository{db: db}
}

// Get implements worksettings.WorkSettingsRepository.
func (r *workSettingsRepository) Get(ctx context.Context, workspaceID string) (worksettings.WorkSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT workspace_id, type, daily_required_minutes, weekly_required_minutes,
			   work_start_time, work_end_time, core_time_start, core_time_end,
			   presence_check_enabled, presence_interval_minutes, office_ip_whitelist,
			   wifi_enabled, wifi_required, gps_enabled, gps_radius_meters,
			   office_latitude, office_longitude,
			   grace_minutes, deduction_per_late, max_late_per_month,
			   timezone, updated_by, updated_at
		FROM work_settings
		WHERE workspace_id = $1`

	var s worksettings.WorkSettings
	err := q.QueryRow(ctx, query, workspaceID).Scan(
		&s.WorkspaceID, &s.Type, &s.DailyRequiredMinutes, &s.WeeklyRequiredMinutes,
		&s.WorkStartTime, &s.WorkEndTime, &s.CoreTimeStart, &s.CoreTimeEnd,
		&s.PresenceCheckEnabled, &s.PresenceIntervalMinutes, &s.OfficeIPWhitelist,
		&s.WifiEnabled, &s.WifiRequired, &s.GPSEnabled, &s.GPSRadiusMeters,
		&s.OfficeLatitude, &s.OfficeLongitude,
		&s.LatePolicy.GraceMinutes, &s.LatePolicy.DeductionPerLate, &s.LatePolicy.MaxLatePerMonth,
		&s.Timezone, &s.UpdatedBy, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return worksettings.WorkSettings{}, worksettings.ErrSettingsNotFound
		}
		return worksettings.WorkSettings{}, fmt.Errorf("failed to get work settings: %w", err)
	}
	if s.OfficeIPWhitelist == nil {
		s.OfficeIPWhitelist = []string{}
	}
	return s, nil
}

// Upsert implements worksettings.WorkSettingsRepository.
func (r *workSettingsRepository) Upsert(ctx context.Context, s worksettings.WorkSettings) (worksettings.WorkSettings, error) {
	q := GetQuerier(ctx, r.db)

	whitelist := s.OfficeIPWhitelist
	if whitelist == nil {
		whitelist = []string{}
	}

	query := `
		INSERT INTO work_settings (
			workspace_id, type, daily_required_minutes, weekly_required_minutes,
			work_start_time, work_end_time, core_time_start, core_time_end,
			presence_check_enabled, presence_interval_minutes, office_ip_whitelist,
			wifi_enabled, wifi_required, gps_enabled, gps_radius_meters,
			office_latitude, office_longitude,
			grace_minutes, deduction_per_late, max_late_per_month,
			timezone, updated_by, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, NOW()
		)
		ON CONFLICT (workspace_id) DO UPDATE SET
			type = EXCLUDED.type,
			daily_required_minutes = EXCLUDED.daily_required_minutes,
			weekly_required_minutes = EXCLUDED.weekly_required_minutes,
			work_start_time = EXCLUDED.work_start_time,
			work_end_time = EXCLUDED.work_end_time,
			core_time_start = EXCLUDED.core_time_start,
			core_time_end = EXCLUDED.core_time_end,
			presence_check_enabled = EXCLUDED.presence_check_enabled,
			presence_interval_minutes = EXCLUDED.presence_interval_minutes,
			office_ip_whitelist = EXCLUDED.office_ip_whitelist,
			wifi_enabled = EXCLUDED.wifi_enabled,
			wifi_required = EXCLUDED.wifi_required,
			gps_enabled = EXCLUDED.gps_enabled,
			gps_radius_meters = EXCLUDED.gps_radius_meters,
			office_latitude = EXCLUDED.office_latitude,
			office_longitude = EXCLUDED.office_longitude,
			grace_minutes = EXCLUDED.grace_minutes,
			deduction_per_late = EXCLUDED.deduction_per_late,
			max_late_per_month = EXCLUDED.max_late_per_month,
			timezone = EXCLUDED.timezone,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING updated_at`

	err := q.QueryRow(ctx, query,
		s.WorkspaceID, s.Type, s.DailyRequiredMinutes, s.WeeklyRequiredMinutes,
		s.WorkStartTime, s.WorkEndTime, s.CoreTimeStart, s.CoreTimeEnd,
		s.PresenceCheckEnabled, s.PresenceIntervalMinutes, whitelist,
		s.WifiEnabled, s.WifiRequired, s.GPSEnabled, s.GPSRadiusMeters,
		s.OfficeLatitude, s.OfficeLongitude,
		s.LatePolicy.GraceMinutes, s.LatePolicy.DeductionPerLate, s.LatePolicy.MaxLatePerMonth,
		s.Timezone, s.UpdatedBy,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return worksettings.WorkSettings{}, fmt.Errorf("failed to upsert work settings: %w", err)
	}
	s.OfficeIPWhitelist = whitelist
	return s, nil
}
