package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/shared"
)

type LeaderboardHandler struct {
	statsSvc StatsServiceInterface
}

func NewLeaderboardHandler(statsSvc StatsServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{
		statsSvc: statsSvc,
	}
}

// @Summary Get Leaderboard
// @Description Get the global leaderboard ranked by best score
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param limit query int false "Limit results (default 10, max 100)"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := shared.DefaultLeaderboardLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return shared.NewBadRequestError(err, "limit must be a positive integer")
		}
		limit = parsed
	}

	leaderboard, err := h.statsSvc.GetLeaderboard(limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", leaderboard)
}
