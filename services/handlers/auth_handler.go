package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
	}
}

// @Summary Device auth
// @Description Exchange a client-derived device ID for a bearer token, creating the user on first contact
// @Tags auth
// @Accept json
// @Produce json
// @Param authRequest body dto.DeviceAuthRequest true "Device identity"
// @Success 200 {object} shared.Response{data=dto.DeviceAuthResponse}
// @Router /api/v1/auth/device [post]
func (h *AuthHandler) DeviceAuth(c *fiber.Ctx) error {
	var req dto.DeviceAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		appErr := shared.NewBadRequestError(err, "Validation failed")
		appErr.Data = dto.FormatValidationErrors(err)
		return appErr
	}

	resp, err := h.authSvc.DeviceAuth(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
