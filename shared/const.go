package shared

const (
	UserID   = "user_id"
	DeviceID = "device_id"

	GameModeColorTap = "color-tap"

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
	DefaultRecentSessions   = 5
	MaxRecentSessions       = 50
)
