package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/colortap-studio/colortap_api/shared"
)

const maxAvatarBytes = 2 << 20

type UserHandler struct {
	authSvc   AuthServiceInterface
	avatarSvc AvatarStorageInterface
}

func NewUserHandler(authSvc AuthServiceInterface, avatarSvc AvatarStorageInterface) *UserHandler {
	return &UserHandler{
		authSvc:   authSvc,
		avatarSvc: avatarSvc,
	}
}

// @Summary Get user profile
// @Description Get the caller's profile
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=model.User}
// @Router /api/v1/user/profile [get]
func (h *UserHandler) GetUserProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	user, err := h.authSvc.GetUser(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", user)
}

// @Summary Upload avatar
// @Description Upload the caller's avatar (PNG, JPEG or WEBP, max 2MB); shown on the leaderboard
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} shared.Response{data=string}
// @Router /api/v1/user/avatar [post]
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		return shared.NewBadRequestError(err, "Avatar file is required")
	}

	if file.Size > maxAvatarBytes {
		return shared.NewBadRequestError(fmt.Errorf("avatar size %d exceeds limit", file.Size), "Avatar must be at most 2MB")
	}

	contentType := file.Header.Get(fiber.HeaderContentType)

	src, err := file.Open()
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid avatar file")
	}
	defer src.Close()

	url, err := h.avatarSvc.UploadAvatar(userID, src, file.Size, contentType)
	if err != nil {
		return shared.NewBadRequestError(err, "Failed to store avatar")
	}

	if err := h.authSvc.SetAvatarURL(userID, url); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", url)
}
