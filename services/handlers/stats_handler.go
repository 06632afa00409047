package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/shared"
)

type StatsHandler struct {
	statsSvc StatsServiceInterface
}

func NewStatsHandler(statsSvc StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		statsSvc: statsSvc,
	}
}

// @Summary Update user stats
// @Description Fold one completed round into the caller's aggregate stats
// @Tags stats
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateRequest body dto.UpdateUserStatsRequest true "Completed round"
// @Success 200 {object} shared.Response{data=dto.UserStatsResponse}
// @Router /api/v1/stats [post]
func (h *StatsHandler) UpdateUserStats(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateUserStatsRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	stats, err := h.statsSvc.UpdateUserStats(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}

// @Summary Get user stats
// @Description Get aggregate stats for the caller, or for userId when given
// @Tags stats
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param userId query string false "User ID (defaults to the caller)"
// @Success 200 {object} shared.Response{data=dto.UserStatsResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetUserStats(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		userID = c.Locals(shared.UserID).(string)
	}

	stats, err := h.statsSvc.GetUserStats(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}
