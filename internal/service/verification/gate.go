// Package verification decides whether a check-in or session start is
// allowed and whether it is automatically marked verified.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/utils"
)

const (
	MethodIP   = "ip"
	MethodWifi = "wifi"
	MethodGPS  = "gps"
	MethodNone = "none"
)

const DefaultLookupTimeout = 10 * time.Second

// NetworkLister is the read side of the WiFi registry.
type NetworkLister interface {
	ListActive(ctx context.Context, workspaceID string) ([]worksettings.WifiNetwork, error)
}

type Decision struct {
	Verified         bool
	IsOfficeIP       bool
	WifiMatched      bool
	GPSMatched       bool
	Method           string
	MatchedNetworkID string
	Warnings         []string
}

func (d Decision) Result() attendance.VerificationResult {
	return attendance.VerificationResult{
		Verified:   d.Verified,
		IsOfficeIP: d.IsOfficeIP,
		Method:     d.Method,
		Warnings:   d.Warnings,
	}
}

type Gate struct {
	networks      NetworkLister
	lookupTimeout time.Duration
}

func NewGate(networks NetworkLister, lookupTimeout time.Duration) *Gate {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Gate{
		networks:      networks,
		lookupTimeout: lookupTimeout,
	}
}

// CheckIPRules applies the two hard IP rules. An empty whitelist applies no
// restriction at all.
func CheckIPRules(settings worksettings.WorkSettings, claimed attendance.WorkLocation, isOfficeIP bool) error {
	if isOfficeIP && claimed == attendance.WorkLocationRemote {
		return attendance.NewVerificationError(attendance.ReasonOfficeIPBlocksRemote)
	}
	if claimed == attendance.WorkLocationOffice && len(settings.OfficeIPWhitelist) > 0 && !isOfficeIP {
		return attendance.NewVerificationError(attendance.ReasonNotOfficeIP)
	}
	return nil
}

// Evaluate runs every rule for one attempt. Hard blocks come back as
// *attendance.VerificationError; missing or unreachable signals only leave
// the decision unverified, even when WiFi is required.
func (g *Gate) Evaluate(ctx context.Context, settings worksettings.WorkSettings, claimed attendance.WorkLocation, signals attendance.Signals) (Decision, error) {
	d := Decision{Method: MethodNone}
	d.IsOfficeIP = settings.IsOfficeIP(signals.EffectiveIP())

	if err := CheckIPRules(settings, claimed, d.IsOfficeIP); err != nil {
		return Decision{}, err
	}

	if settings.WifiEnabled {
		network, matched, warning := g.matchWifi(ctx, settings.WorkspaceID, signals)
		switch {
		case warning != "":
			// The registry could not be read, so a required match is
			// unknown rather than missing.
			d.Warnings = append(d.Warnings, warning)
		case matched:
			d.WifiMatched = true
			d.MatchedNetworkID = network.ID
		case settings.WifiRequired && claimed == attendance.WorkLocationOffice:
			return Decision{}, attendance.NewVerificationError(attendance.ReasonWifiRequiredNoMatch)
		}
	}

	if settings.GPSEnabled && claimed == attendance.WorkLocationOffice && settings.HasOfficeLocation() &&
		signals.Latitude != nil && signals.Longitude != nil {
		d.GPSMatched = utils.WithinRadius(
			*signals.Latitude, *signals.Longitude,
			*settings.OfficeLatitude, *settings.OfficeLongitude,
			float64(settings.GPSRadiusMeters),
		)
	}

	switch {
	case d.IsOfficeIP:
		d.Method = MethodIP
	case d.WifiMatched:
		d.Method = MethodWifi
	case d.GPSMatched:
		d.Method = MethodGPS
	}
	d.Verified = d.Method != MethodNone

	return d, nil
}

func (g *Gate) matchWifi(ctx context.Context, workspaceID string, signals attendance.Signals) (worksettings.WifiNetwork, bool, string) {
	if signals.WifiSSID == "" || g.networks == nil {
		return worksettings.WifiNetwork{}, false, ""
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.lookupTimeout)
	defer cancel()

	networks, err := g.networks.ListActive(lookupCtx, workspaceID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("WiFi registry lookup timed out", "workspace_id", workspaceID, "timeout", g.lookupTimeout)
			return worksettings.WifiNetwork{}, false, "wifi registry lookup timed out"
		}
		slog.Warn("WiFi registry lookup failed", "workspace_id", workspaceID, "error", err)
		return worksettings.WifiNetwork{}, false, "wifi registry unavailable"
	}

	network, ok := worksettings.FindMatch(networks, signals.WifiSSID, signals.WifiBSSID)
	return network, ok, ""
}
