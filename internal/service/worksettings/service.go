package worksettings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const (
	ReasonWifiDisabled   = "WiFi verification is not enabled for this workspace"
	ReasonNoRegistry     = "No WiFi networks registered for verification"
	ReasonWifiVerified   = "WiFi verified successfully"
	ReasonWifiUnverified = "Connected WiFi is not registered as office network"
)

type WorkSettingsServiceImpl struct {
	settingsRepo    worksettings.WorkSettingsRepository
	wifiRepo        worksettings.WifiNetworkRepository
	memberRepo      workspace.MemberRepository
	publisher       attendance.EventPublisher
	defaultTimezone string
	now             func() time.Time
}

func NewWorkSettingsService(
	settingsRepo worksettings.WorkSettingsRepository,
	wifiRepo worksettings.WifiNetworkRepository,
	memberRepo workspace.MemberRepository,
	publisher attendance.EventPublisher,
	defaultTimezone string,
) worksettings.WorkSettingsService {
	if publisher == nil {
		publisher = attendance.NopPublisher{}
	}
	return &WorkSettingsServiceImpl{
		settingsRepo:    settingsRepo,
		wifiRepo:        wifiRepo,
		memberRepo:      memberRepo,
		publisher:       publisher,
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

func (s *WorkSettingsServiceImpl) member(ctx context.Context, workspaceID string) (workspace.Member, error) {
	if strings.TrimSpace(workspaceID) == "" {
		var errs validator.ValidationErrors
		errs.Add("workspaceId", "workspaceId is required")
		return workspace.Member{}, errs.Err()
	}
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return workspace.Member{}, err
	}
	return s.memberRepo.GetMember(ctx, workspaceID, userID)
}

func (s *WorkSettingsServiceImpl) admin(ctx context.Context, workspaceID string) (workspace.Member, error) {
	m, err := s.member(ctx, workspaceID)
	if err != nil {
		return workspace.Member{}, err
	}
	if !m.IsAdmin() {
		return workspace.Member{}, workspace.ErrAdminPrivilegeRequired
	}
	return m, nil
}

func (s *WorkSettingsServiceImpl) load(ctx context.Context, workspaceID string) (worksettings.WorkSettings, error) {
	return worksettings.LoadOrDefault(ctx, s.settingsRepo, workspaceID, s.defaultTimezone)
}

func (s *WorkSettingsServiceImpl) GetSettings(ctx context.Context, workspaceID string) (worksettings.WorkSettingsResponse, error) {
	if _, err := s.member(ctx, workspaceID); err != nil {
		return worksettings.WorkSettingsResponse{}, err
	}

	settings, err := s.load(ctx, workspaceID)
	if err != nil {
		return worksettings.WorkSettingsResponse{}, err
	}
	return worksettings.NewWorkSettingsResponse(settings), nil
}

func (s *WorkSettingsServiceImpl) UpdateSettings(ctx context.Context, req worksettings.UpdateSettingsRequest) (worksettings.WorkSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return worksettings.WorkSettingsResponse{}, err
	}

	admin, err := s.admin(ctx, req.WorkspaceID)
	if err != nil {
		return worksettings.WorkSettingsResponse{}, err
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = s.defaultTimezone
	}

	settings := worksettings.WorkSettings{
		WorkspaceID:             req.WorkspaceID,
		Type:                    worksettings.WorkType(req.Type),
		DailyRequiredMinutes:    req.DailyRequiredMinutes,
		WeeklyRequiredMinutes:   req.WeeklyRequiredMinutes,
		WorkStartTime:           req.WorkStartTime,
		WorkEndTime:             req.WorkEndTime,
		CoreTimeStart:           req.CoreTimeStart,
		CoreTimeEnd:             req.CoreTimeEnd,
		PresenceCheckEnabled:    req.PresenceCheckEnabled,
		PresenceIntervalMinutes: req.PresenceIntervalMinutes,
		OfficeIPWhitelist:       req.OfficeIPWhitelist,
		WifiEnabled:             req.WifiEnabled,
		WifiRequired:            req.WifiRequired,
		GPSEnabled:              req.GPSEnabled,
		GPSRadiusMeters:         req.GPSRadiusMeters,
		OfficeLatitude:          req.OfficeLatitude,
		OfficeLongitude:         req.OfficeLongitude,
		LatePolicy: worksettings.LatePolicy{
			GraceMinutes:     req.LatePolicy.GraceMinutes,
			DeductionPerLate: req.LatePolicy.DeductionPerLate,
			MaxLatePerMonth:  req.LatePolicy.MaxLatePerMonth,
		},
		Timezone:  timezone,
		UpdatedBy: &admin.UserID,
		UpdatedAt: s.now(),
	}
	if settings.Type != worksettings.WorkTypeFlexible {
		settings.CoreTimeStart = nil
		settings.CoreTimeEnd = nil
	}

	saved, err := s.settingsRepo.Upsert(ctx, settings)
	if err != nil {
		return worksettings.WorkSettingsResponse{}, fmt.Errorf("failed to save work settings: %w", err)
	}

	slog.Info("work settings updated",
		"workspace_id", req.WorkspaceID,
		"updated_by", admin.UserID,
		"type", saved.Type,
		"whitelist_size", len(saved.OfficeIPWhitelist),
	)

	resp := worksettings.NewWorkSettingsResponse(saved)
	s.publisher.Publish(ctx, attendance.Event{
		Type:        attendance.EventSettingsUpdated,
		WorkspaceID: req.WorkspaceID,
		UserID:      admin.UserID,
		Data:        resp,
		Broadcast:   true,
	})
	return resp, nil
}

func (s *WorkSettingsServiceImpl) ListWifiNetworks(ctx context.Context, workspaceID string) ([]worksettings.WifiNetworkResponse, error) {
	if _, err := s.member(ctx, workspaceID); err != nil {
		return nil, err
	}

	networks, err := s.wifiRepo.List(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wifi networks: %w", err)
	}

	out := make([]worksettings.WifiNetworkResponse, 0, len(networks))
	for _, n := range networks {
		out = append(out, worksettings.NewWifiNetworkResponse(n))
	}
	return out, nil
}

func (s *WorkSettingsServiceImpl) CreateWifiNetwork(ctx context.Context, req worksettings.CreateWifiNetworkRequest) (worksettings.WifiNetworkResponse, error) {
	if err := req.Validate(); err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}

	admin, err := s.admin(ctx, req.WorkspaceID)
	if err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}

	now := s.now()
	created, err := s.wifiRepo.Create(ctx, worksettings.WifiNetwork{
		ID:           uuid.Must(uuid.NewV7()).String(),
		WorkspaceID:  req.WorkspaceID,
		SSID:         req.SSID,
		BSSID:        req.BSSID,
		LocationName: req.LocationName,
		IsActive:     true,
		CreatedBy:    admin.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}

	slog.Info("wifi network registered", "workspace_id", req.WorkspaceID, "network_id", created.ID, "ssid", created.SSID)
	return worksettings.NewWifiNetworkResponse(created), nil
}

func (s *WorkSettingsServiceImpl) UpdateWifiNetwork(ctx context.Context, req worksettings.UpdateWifiNetworkRequest) (worksettings.WifiNetworkResponse, error) {
	if err := req.Validate(); err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}

	if _, err := s.admin(ctx, req.WorkspaceID); err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}

	network, err := s.wifiRepo.GetByID(ctx, req.WorkspaceID, req.ID)
	if err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}

	if req.SSID != nil {
		network.SSID = *req.SSID
	}
	if req.BSSID != nil {
		network.BSSID = req.BSSID
	}
	if req.LocationName != nil {
		network.LocationName = req.LocationName
	}
	if req.IsActive != nil {
		network.IsActive = *req.IsActive
	}
	network.UpdatedAt = s.now()

	updated, err := s.wifiRepo.Update(ctx, network)
	if err != nil {
		return worksettings.WifiNetworkResponse{}, err
	}
	return worksettings.NewWifiNetworkResponse(updated), nil
}

func (s *WorkSettingsServiceImpl) DeleteWifiNetwork(ctx context.Context, workspaceID, id string) error {
	if _, err := s.admin(ctx, workspaceID); err != nil {
		return err
	}

	if err := s.wifiRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	slog.Info("wifi network deleted", "workspace_id", workspaceID, "network_id", id)
	return nil
}

// VerifyWifi reports whether the client's network is a registered office
// network. Workspaces that do not verify WiFi always pass.
func (s *WorkSettingsServiceImpl) VerifyWifi(ctx context.Context, req worksettings.VerifyWifiRequest) (worksettings.VerifyWifiResponse, error) {
	if err := req.Validate(); err != nil {
		return worksettings.VerifyWifiResponse{}, err
	}

	m, err := s.member(ctx, req.WorkspaceID)
	if err != nil {
		return worksettings.VerifyWifiResponse{}, err
	}

	settings, err := s.load(ctx, req.WorkspaceID)
	if err != nil {
		return worksettings.VerifyWifiResponse{}, err
	}
	if !settings.WifiEnabled {
		return worksettings.VerifyWifiResponse{Verified: true, Reason: ReasonWifiDisabled}, nil
	}

	networks, err := s.wifiRepo.ListActive(ctx, req.WorkspaceID)
	if err != nil {
		return worksettings.VerifyWifiResponse{}, fmt.Errorf("failed to list wifi networks: %w", err)
	}
	if len(networks) == 0 {
		return worksettings.VerifyWifiResponse{Verified: true, Reason: ReasonNoRegistry}, nil
	}

	match, ok := worksettings.FindMatch(networks, req.SSID, req.BSSID)
	slog.Info("wifi verification attempted",
		"workspace_id", req.WorkspaceID,
		"user_id", m.UserID,
		"ssid", req.SSID,
		"verified", ok,
	)
	if !ok {
		return worksettings.VerifyWifiResponse{Verified: false, Reason: ReasonWifiUnverified}, nil
	}

	network := worksettings.NewWifiNetworkResponse(match)
	return worksettings.VerifyWifiResponse{Verified: true, Reason: ReasonWifiVerified, Network: &network}, nil
}
