package worksettings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seoulTime(t *testing.T, hour, minute int) time.Time {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return time.Date(2025, 3, 4, hour, minute, 0, 0, loc)
}

func TestIsLate(t *testing.T) {
	fixed := DefaultSettings("ws-1", "Asia/Seoul")

	cases := []struct {
		name     string
		settings WorkSettings
		hour     int
		minute   int
		want     bool
	}{
		{"fixed within grace", fixed, 9, 5, false},
		{"fixed at grace limit", fixed, 9, 10, false},
		{"fixed after grace", fixed, 9, 20, true},
		{"fixed early", fixed, 8, 30, false},
		{"flexible uses core time", func() WorkSettings {
			s := fixed
			s.Type = WorkTypeFlexible
			s.CoreTimeStart = strPtr("11:00")
			return s
		}(), 10, 30, false},
		{"flexible late after core time", func() WorkSettings {
			s := fixed
			s.Type = WorkTypeFlexible
			s.CoreTimeStart = strPtr("11:00")
			return s
		}(), 11, 30, true},
		{"flexible without core falls back to start", func() WorkSettings {
			s := fixed
			s.Type = WorkTypeFlexible
			return s
		}(), 9, 30, true},
		{"autonomous never late", func() WorkSettings {
			s := fixed
			s.Type = WorkTypeAutonomous
			return s
		}(), 15, 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.settings.IsLate(seoulTime(t, c.hour, c.minute)))
		})
	}
}

func TestIsLateUsesWorkspaceDay(t *testing.T) {
	s := DefaultSettings("ws-1", "Asia/Seoul")
	// 00:05 UTC is 09:05 in Seoul.
	assert.False(t, s.IsLate(time.Date(2025, 3, 4, 0, 5, 0, 0, time.UTC)))
	assert.True(t, s.IsLate(time.Date(2025, 3, 4, 0, 20, 0, 0, time.UTC)))
}

func TestIsOfficeIP(t *testing.T) {
	s := DefaultSettings("ws-1", "Asia/Seoul")
	assert.False(t, s.IsOfficeIP("203.0.113.5"), "empty whitelist never matches")

	s.OfficeIPWhitelist = []string{"203.0.113.5", "198.51.100.0/24"}
	assert.True(t, s.IsOfficeIP("203.0.113.5"))
	assert.True(t, s.IsOfficeIP(" 203.0.113.5 "))
	assert.True(t, s.IsOfficeIP("::ffff:203.0.113.5"))
	assert.True(t, s.IsOfficeIP("198.51.100.77"))
	assert.False(t, s.IsOfficeIP("203.0.113.6"))
	assert.False(t, s.IsOfficeIP("not-an-ip"))
	assert.False(t, s.IsOfficeIP(""))
}

func TestNormalizeWhitelist(t *testing.T) {
	got := NormalizeWhitelist([]string{" 10.0.0.1", "10.0.0.1", "", "  ", "10.0.0.2 "})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, got)
	assert.Equal(t, []string{}, NormalizeWhitelist(nil))
}

func TestWifiMatches(t *testing.T) {
	n := WifiNetwork{SSID: "CodeB-Office", BSSID: strPtr("aa:bb:cc:dd:ee:ff"), IsActive: true}

	assert.True(t, n.Matches("CodeB-Office", ""))
	assert.True(t, n.Matches("CodeB-Office", "aa:bb:cc:dd:ee:ff"))
	assert.False(t, n.Matches("CodeB-Office", "11:22:33:44:55:66"))
	assert.False(t, n.Matches("codeb-office", ""))
	assert.False(t, n.Matches("", ""))

	inactive := WifiNetwork{SSID: "Guest", IsActive: false}
	_, ok := FindMatch([]WifiNetwork{inactive, n}, "Guest", "")
	assert.False(t, ok)
	found, ok := FindMatch([]WifiNetwork{inactive, n}, "CodeB-Office", "")
	assert.True(t, ok)
	assert.Equal(t, "CodeB-Office", found.SSID)
}

func TestWeeklyTarget(t *testing.T) {
	s := DefaultSettings("ws-1", "Asia/Seoul")
	assert.Equal(t, 2400, s.WeeklyTarget())
	s.WeeklyRequiredMinutes = 0
	assert.Equal(t, 2400, s.WeeklyTarget())
	s.WeeklyRequiredMinutes = 1800
	assert.Equal(t, 1800, s.WeeklyTarget())
}

func TestUpdateSettingsRequestValidate(t *testing.T) {
	valid := func() UpdateSettingsRequest {
		return UpdateSettingsRequest{
			WorkspaceID:             "ws-1",
			Type:                    "FIXED",
			DailyRequiredMinutes:    480,
			WeeklyRequiredMinutes:   2400,
			WorkStartTime:           "09:00",
			WorkEndTime:             "18:00",
			PresenceCheckEnabled:    true,
			PresenceIntervalMinutes: 90,
			OfficeIPWhitelist:       []string{" 203.0.113.5", "203.0.113.5", "10.0.0.0/8"},
			Timezone:                "Asia/Seoul",
		}
	}

	t.Run("valid request dedupes whitelist", func(t *testing.T) {
		req := valid()
		require.NoError(t, req.Validate())
		assert.Equal(t, []string{"203.0.113.5", "10.0.0.0/8"}, req.OfficeIPWhitelist)
	})

	t.Run("flexible requires core time", func(t *testing.T) {
		req := valid()
		req.Type = "FLEXIBLE"
		assert.Error(t, req.Validate())

		req.CoreTimeStart = strPtr("11:00")
		req.CoreTimeEnd = strPtr("10:00")
		assert.Error(t, req.Validate())

		req.CoreTimeEnd = strPtr("16:00")
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects malformed whitelist entry", func(t *testing.T) {
		req := valid()
		req.OfficeIPWhitelist = []string{"999.1.1.1"}
		assert.Error(t, req.Validate())
	})

	t.Run("wifi required needs wifi enabled", func(t *testing.T) {
		req := valid()
		req.WifiRequired = true
		assert.Error(t, req.Validate())
		req.WifiEnabled = true
		assert.NoError(t, req.Validate())
	})

	t.Run("gps needs coordinates and radius", func(t *testing.T) {
		req := valid()
		req.GPSEnabled = true
		assert.Error(t, req.Validate())

		lat, lng := 37.5663, 126.9779
		req.OfficeLatitude = &lat
		req.OfficeLongitude = &lng
		req.GPSRadiusMeters = 150
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects unknown type and bad clock", func(t *testing.T) {
		req := valid()
		req.Type = "SHIFT"
		req.WorkStartTime = "9am"
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type")
		assert.Contains(t, err.Error(), "workStartTime")
	})
}
