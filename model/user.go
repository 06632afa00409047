package model

import "time"

// User is the device-backed identity for a player. The mobile client derives
// a stable device ID locally and exchanges it for a token; there is no
// password flow.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	DeviceID  string    `json:"device_id" gorm:"uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"not null"`
	AvatarURL string    `json:"avatar_url"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
