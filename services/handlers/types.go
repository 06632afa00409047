package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/model"
)

type AuthServiceInterface interface {
	DeviceAuth(req dto.DeviceAuthRequest) (*dto.DeviceAuthResponse, error)
	GetUser(userID string) (*model.User, error)
	SetAvatarURL(userID, avatarURL string) error
	RequiredAuth() fiber.Handler
}

type StatsServiceInterface interface {
	UpdateUserStats(userID string, req dto.UpdateUserStatsRequest) (*dto.UserStatsResponse, error)
	GetUserStats(userID string) (*dto.UserStatsResponse, error)
	GetLeaderboard(limit int) (*dto.LeaderboardResponse, error)
}

type SessionServiceInterface interface {
	AddGameSession(userID string, req dto.AddGameSessionRequest) (*dto.GameSessionResponse, error)
	GetRecentSessions(userID string, limit int) (*dto.SessionListResponse, error)
}

type AvatarStorageInterface interface {
	UploadAvatar(userID string, reader io.Reader, size int64, contentType string) (string, error)
}
