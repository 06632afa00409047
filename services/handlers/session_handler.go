package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/shared"
)

type SessionHandler struct {
	sessionSvc SessionServiceInterface
}

func NewSessionHandler(sessionSvc SessionServiceInterface) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
	}
}

// @Summary Add game session
// @Description Append one immutable record of a completed round
// @Tags sessions
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param sessionRequest body dto.AddGameSessionRequest true "Completed round"
// @Success 201 {object} shared.Response{data=dto.GameSessionResponse}
// @Router /api/v1/sessions [post]
func (h *SessionHandler) AddGameSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.AddGameSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	session, err := h.sessionSvc.AddGameSession(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", session)
}

// @Summary Get recent sessions
// @Description Get the caller's most recent sessions, newest first
// @Tags sessions
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param limit query int false "Limit results (default 5, max 50)"
// @Success 200 {object} shared.Response{data=dto.SessionListResponse}
// @Router /api/v1/sessions [get]
func (h *SessionHandler) GetRecentSessions(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	limit := shared.DefaultRecentSessions
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := h.sessionSvc.GetRecentSessions(userID, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", sessions)
}
