package worksettings

import "errors"

var (
	ErrSettingsNotFound    = errors.New("work settings not found")
	ErrWifiNetworkNotFound = errors.New("wifi network not found")
	ErrWifiNetworkExists   = errors.New("wifi network with this SSID is already registered")
)
