package worksettings

import (
	"net/netip"
	"strings"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

type WorkType string

const (
	WorkTypeFixed      WorkType = "FIXED"
	WorkTypeFlexible   WorkType = "FLEXIBLE"
	WorkTypeAutonomous WorkType = "AUTONOMOUS"
)

const (
	DefaultDailyRequiredMinutes    = 480
	DefaultWeeklyRequiredMinutes   = 2400
	DefaultWorkStartTime           = "09:00"
	DefaultWorkEndTime             = "18:00"
	DefaultPresenceIntervalMinutes = 90
	DefaultGraceMinutes            = 10
	DefaultMaxLatePerMonth         = 3
)

type LatePolicy struct {
	GraceMinutes     int
	DeductionPerLate decimal.Decimal
	MaxLatePerMonth  int
}

// WorkSettings is the per-workspace attendance policy. Attendance flows only
// read it; admins replace it as a whole.
type WorkSettings struct {
	WorkspaceID             string
	Type                    WorkType
	DailyRequiredMinutes    int
	WeeklyRequiredMinutes   int
	WorkStartTime           string
	WorkEndTime             string
	CoreTimeStart           *string
	CoreTimeEnd             *string
	PresenceCheckEnabled    bool
	PresenceIntervalMinutes int
	OfficeIPWhitelist       []string
	WifiEnabled             bool
	WifiRequired            bool
	GPSEnabled              bool
	GPSRadiusMeters         int
	OfficeLatitude          *float64
	OfficeLongitude         *float64
	LatePolicy              LatePolicy
	Timezone                string
	UpdatedBy               *string
	UpdatedAt               time.Time
}

// DefaultSettings is what a workspace gets before an admin saves anything.
func DefaultSettings(workspaceID, timezone string) WorkSettings {
	return WorkSettings{
		WorkspaceID:             workspaceID,
		Type:                    WorkTypeFixed,
		DailyRequiredMinutes:    DefaultDailyRequiredMinutes,
		WeeklyRequiredMinutes:   DefaultWeeklyRequiredMinutes,
		WorkStartTime:           DefaultWorkStartTime,
		WorkEndTime:             DefaultWorkEndTime,
		PresenceCheckEnabled:    true,
		PresenceIntervalMinutes: DefaultPresenceIntervalMinutes,
		OfficeIPWhitelist:       []string{},
		LatePolicy: LatePolicy{
			GraceMinutes:     DefaultGraceMinutes,
			DeductionPerLate: decimal.Zero,
			MaxLatePerMonth:  DefaultMaxLatePerMonth,
		},
		Timezone: timezone,
	}
}

// Location resolves the workspace timezone, falling back to UTC.
func (s WorkSettings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScheduledStart returns the instant a workday on date is expected to begin.
// AUTONOMOUS workspaces have no expected start.
func (s WorkSettings) ScheduledStart(date time.Time) (time.Time, bool) {
	clock := s.WorkStartTime
	switch s.Type {
	case WorkTypeAutonomous:
		return time.Time{}, false
	case WorkTypeFlexible:
		if s.CoreTimeStart != nil && *s.CoreTimeStart != "" {
			clock = *s.CoreTimeStart
		}
	}
	if clock == "" {
		return time.Time{}, false
	}
	start, err := period.ClockOn(date, clock, s.Location())
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

// IsLate reports whether a first check-in at checkIn is past the scheduled
// start plus the grace period. Arriving exactly at the grace limit is on time.
func (s WorkSettings) IsLate(checkIn time.Time) bool {
	date := period.CivilDate(checkIn, s.Location())
	scheduled, ok := s.ScheduledStart(date)
	if !ok {
		return false
	}
	graceLimit := scheduled.Add(time.Duration(s.LatePolicy.GraceMinutes) * time.Minute)
	return checkIn.After(graceLimit)
}

// WeeklyTarget falls back to the default 40 hours when unset.
func (s WorkSettings) WeeklyTarget() int {
	if s.WeeklyRequiredMinutes > 0 {
		return s.WeeklyRequiredMinutes
	}
	return DefaultWeeklyRequiredMinutes
}

// IsOfficeIP reports whether ip matches a whitelist entry. Entries are single
// addresses or CIDR prefixes. An empty whitelist never matches.
func (s WorkSettings) IsOfficeIP(ip string) bool {
	if len(s.OfficeIPWhitelist) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, entry := range s.OfficeIPWhitelist {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err == nil && prefix.Contains(addr) {
				return true
			}
			continue
		}
		if allowed, err := netip.ParseAddr(entry); err == nil && allowed.Unmap() == addr {
			return true
		}
	}
	return false
}

// HasOfficeLocation reports whether a GPS check can be performed.
func (s WorkSettings) HasOfficeLocation() bool {
	return s.OfficeLatitude != nil && s.OfficeLongitude != nil && s.GPSRadiusMeters > 0
}

// NormalizeWhitelist trims entries, drops blanks and removes duplicates while
// keeping the first occurrence order.
func NormalizeWhitelist(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

type WifiNetwork struct {
	ID           string
	WorkspaceID  string
	SSID         string
	BSSID        *string
	LocationName *string
	IsActive     bool
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Matches compares SSIDs exactly. The BSSID is only compared when both the
// registry entry and the client supplied one.
func (n WifiNetwork) Matches(ssid, bssid string) bool {
	if ssid == "" || n.SSID != ssid {
		return false
	}
	if n.BSSID != nil && *n.BSSID != "" && bssid != "" {
		return *n.BSSID == bssid
	}
	return true
}

// FindMatch returns the first active network matching the signal.
func FindMatch(networks []WifiNetwork, ssid, bssid string) (WifiNetwork, bool) {
	for _, n := range networks {
		if n.IsActive && n.Matches(ssid, bssid) {
			return n, true
		}
	}
	return WifiNetwork{}, false
}
