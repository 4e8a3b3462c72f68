package worksettings

import (
	"net/netip"
	"strings"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// SETTINGS DTOs
// ========================================

type LatePolicyPayload struct {
	GraceMinutes     int             `json:"graceMinutes" validate:"gte=0,lte=240"`
	DeductionPerLate decimal.Decimal `json:"deductionPerLate"`
	MaxLatePerMonth  int             `json:"maxLatePerMonth" validate:"gte=0,lte=31"`
}

type UpdateSettingsRequest struct {
	WorkspaceID             string            `json:"workspaceId" validate:"required"`
	Type                    string            `json:"type" validate:"required,oneof=FIXED FLEXIBLE AUTONOMOUS"`
	DailyRequiredMinutes    int               `json:"dailyRequiredMinutes" validate:"gte=0,lte=1440"`
	WeeklyRequiredMinutes   int               `json:"weeklyRequiredMinutes" validate:"gte=0,lte=10080"`
	WorkStartTime           string            `json:"workStartTime" validate:"required,clock"`
	WorkEndTime             string            `json:"workEndTime" validate:"required,clock"`
	CoreTimeStart           *string           `json:"coreTimeStart" validate:"omitempty,clock"`
	CoreTimeEnd             *string           `json:"coreTimeEnd" validate:"omitempty,clock"`
	PresenceCheckEnabled    bool              `json:"presenceCheckEnabled"`
	PresenceIntervalMinutes int               `json:"presenceIntervalMinutes" validate:"gte=0,lte=480"`
	OfficeIPWhitelist       []string          `json:"officeIpWhitelist"`
	WifiEnabled             bool              `json:"wifiEnabled"`
	WifiRequired            bool              `json:"wifiRequired"`
	GPSEnabled              bool              `json:"gpsEnabled"`
	GPSRadiusMeters         int               `json:"gpsRadius" validate:"gte=0,lte=10000"`
	OfficeLatitude          *float64          `json:"officeLatitude" validate:"omitempty,latitude"`
	OfficeLongitude         *float64          `json:"officeLongitude" validate:"omitempty,longitude"`
	LatePolicy              LatePolicyPayload `json:"latePolicy"`
	Timezone                string            `json:"timezone" validate:"omitempty,timezone"`
}

func (r *UpdateSettingsRequest) Validate() error {
	r.OfficeIPWhitelist = NormalizeWhitelist(r.OfficeIPWhitelist)

	errs := validator.Struct(r)

	if r.Type == string(WorkTypeFlexible) {
		if r.CoreTimeStart == nil || r.CoreTimeEnd == nil {
			errs.Add("coreTimeStart", "core time is required for FLEXIBLE work")
		} else if validator.IsValidClock(*r.CoreTimeStart) && validator.IsValidClock(*r.CoreTimeEnd) &&
			*r.CoreTimeStart >= *r.CoreTimeEnd {
			errs.Add("coreTimeEnd", "coreTimeEnd must be after coreTimeStart")
		}
	}

	if r.PresenceCheckEnabled && r.PresenceIntervalMinutes < 10 {
		errs.Add("presenceIntervalMinutes", "presenceIntervalMinutes must be at least 10 when presence checks are enabled")
	}

	for _, entry := range r.OfficeIPWhitelist {
		if !isIPOrPrefix(entry) {
			errs.Add("officeIpWhitelist", "invalid IP address or CIDR: "+entry)
			break
		}
	}

	if r.WifiRequired && !r.WifiEnabled {
		errs.Add("wifiRequired", "wifiRequired needs wifiEnabled")
	}

	if r.GPSEnabled {
		if r.OfficeLatitude == nil || r.OfficeLongitude == nil {
			errs.Add("officeLatitude", "office coordinates are required when GPS verification is enabled")
		}
		if r.GPSRadiusMeters <= 0 {
			errs.Add("gpsRadius", "gpsRadius must be greater than 0 when GPS verification is enabled")
		}
	}

	if r.LatePolicy.DeductionPerLate.IsNegative() {
		errs.Add("latePolicy.deductionPerLate", "deductionPerLate must not be negative")
	}

	return errs.Err()
}

func isIPOrPrefix(s string) bool {
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

type WorkSettingsResponse struct {
	WorkspaceID             string            `json:"workspaceId"`
	Type                    WorkType          `json:"type"`
	DailyRequiredMinutes    int               `json:"dailyRequiredMinutes"`
	WeeklyRequiredMinutes   int               `json:"weeklyRequiredMinutes"`
	WorkStartTime           string            `json:"workStartTime"`
	WorkEndTime             string            `json:"workEndTime"`
	CoreTimeStart           *string           `json:"coreTimeStart"`
	CoreTimeEnd             *string           `json:"coreTimeEnd"`
	PresenceCheckEnabled    bool              `json:"presenceCheckEnabled"`
	PresenceIntervalMinutes int               `json:"presenceIntervalMinutes"`
	OfficeIPWhitelist       []string          `json:"officeIpWhitelist"`
	WifiEnabled             bool              `json:"wifiEnabled"`
	WifiRequired            bool              `json:"wifiRequired"`
	GPSEnabled              bool              `json:"gpsEnabled"`
	GPSRadiusMeters         int               `json:"gpsRadius"`
	OfficeLatitude          *float64          `json:"officeLatitude"`
	OfficeLongitude         *float64          `json:"officeLongitude"`
	LatePolicy              LatePolicyPayload `json:"latePolicy"`
	Timezone                string            `json:"timezone"`
	UpdatedAt               *time.Time        `json:"updatedAt"`
}

func NewWorkSettingsResponse(s WorkSettings) WorkSettingsResponse {
	resp := WorkSettingsResponse{
		WorkspaceID:             s.WorkspaceID,
		Type:                    s.Type,
		DailyRequiredMinutes:    s.DailyRequiredMinutes,
		WeeklyRequiredMinutes:   s.WeeklyTarget(),
		WorkStartTime:           s.WorkStartTime,
		WorkEndTime:             s.WorkEndTime,
		CoreTimeStart:           s.CoreTimeStart,
		CoreTimeEnd:             s.CoreTimeEnd,
		PresenceCheckEnabled:    s.PresenceCheckEnabled,
		PresenceIntervalMinutes: s.PresenceIntervalMinutes,
		OfficeIPWhitelist:       s.OfficeIPWhitelist,
		WifiEnabled:             s.WifiEnabled,
		WifiRequired:            s.WifiRequired,
		GPSEnabled:              s.GPSEnabled,
		GPSRadiusMeters:         s.GPSRadiusMeters,
		OfficeLatitude:          s.OfficeLatitude,
		OfficeLongitude:         s.OfficeLongitude,
		LatePolicy: LatePolicyPayload{
			GraceMinutes:     s.LatePolicy.GraceMinutes,
			DeductionPerLate: s.LatePolicy.DeductionPerLate,
			MaxLatePerMonth:  s.LatePolicy.MaxLatePerMonth,
		},
		Timezone: s.Timezone,
	}
	if resp.OfficeIPWhitelist == nil {
		resp.OfficeIPWhitelist = []string{}
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// ========================================
// WIFI DTOs
// ========================================

type CreateWifiNetworkRequest struct {
	WorkspaceID  string  `json:"workspaceId" validate:"required"`
	SSID         string  `json:"ssid" validate:"required,max=32"`
	BSSID        *string `json:"bssid" validate:"omitempty,mac"`
	LocationName *string `json:"locationName" validate:"omitempty,max=100"`
}

func (r *CreateWifiNetworkRequest) Validate() error {
	r.SSID = strings.TrimSpace(r.SSID)
	return validator.Struct(r).Err()
}

type UpdateWifiNetworkRequest struct {
	ID           string  `json:"-"`
	WorkspaceID  string  `json:"workspaceId" validate:"required"`
	SSID         *string `json:"ssid" validate:"omitempty,min=1,max=32"`
	BSSID        *string `json:"bssid" validate:"omitempty,mac"`
	LocationName *string `json:"locationName" validate:"omitempty,max=100"`
	IsActive     *bool   `json:"isActive"`
}

func (r *UpdateWifiNetworkRequest) Validate() error {
	if r.SSID != nil {
		trimmed := strings.TrimSpace(*r.SSID)
		r.SSID = &trimmed
	}
	errs := validator.Struct(r)
	if r.SSID != nil && *r.SSID == "" {
		errs.Add("ssid", "ssid must not be empty")
	}
	return errs.Err()
}

type VerifyWifiRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	SSID        string `json:"ssid" validate:"required"`
	BSSID       string `json:"bssid"`
}

func (r *VerifyWifiRequest) Validate() error {
	return validator.Struct(r).Err()
}

type VerifyWifiResponse struct {
	Verified bool                 `json:"verified"`
	Reason   string               `json:"reason"`
	Network  *WifiNetworkResponse `json:"network,omitempty"`
}

type WifiNetworkResponse struct {
	ID           string    `json:"id"`
	WorkspaceID  string    `json:"workspaceId"`
	SSID         string    `json:"ssid"`
	BSSID        *string   `json:"bssid"`
	LocationName *string   `json:"locationName"`
	IsActive     bool      `json:"isActive"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewWifiNetworkResponse(n WifiNetwork) WifiNetworkResponse {
	return WifiNetworkResponse{
		ID:           n.ID,
		WorkspaceID:  n.WorkspaceID,
		SSID:         n.SSID,
		BSSID:        n.BSSID,
		LocationName: n.LocationName,
		IsActive:     n.IsActive,
		CreatedBy:    n.CreatedBy,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}
