package services

import (
	"errors"
	"fmt"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/model"
	"github.com/colortap-studio/colortap_api/services/repositories"
	"github.com/colortap-studio/colortap_api/shared"
)

// AuthService exchanges a client-derived device ID for a signed token.
// There is no password flow; the device ID is the identity.
type AuthService struct {
	context.DefaultService

	jwtSvc *JWTService
	sqlSvc SqlService

	userRepo *repositories.UserRepository
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.sqlSvc = svc.Service(SQL_SVC).(SqlService)
	svc.userRepo = repositories.NewUserRepository(svc.sqlSvc.Db())
	return nil
}

// DeviceAuth returns a token for the user behind deviceID, creating the user
// on first contact. Two first contacts racing on the same device resolve via
// the unique index on device_id.
func (svc *AuthService) DeviceAuth(req dto.DeviceAuthRequest) (*dto.DeviceAuthResponse, error) {
	user, err := svc.userRepo.GetByDeviceID(req.DeviceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svc.sqlSvc.HandleError(err)
		}

		user = &model.User{
			DeviceID: req.DeviceID,
			Username: req.Username,
		}
		if user.Username == "" {
			user.Username = "player"
		}

		if createErr := svc.userRepo.Create(user); createErr != nil {
			if !repositories.IsDuplicateKey(createErr) {
				return nil, svc.sqlSvc.HandleError(createErr)
			}
			// Lost the create race; the other request's row wins.
			user, err = svc.userRepo.GetByDeviceID(req.DeviceID)
			if err != nil {
				return nil, svc.sqlSvc.HandleError(err)
			}
		}
	} else {
		if err := svc.userRepo.UpdateLastSeen(user.ID); err != nil {
			log.Printf("Failed to update last seen for user %s: %v", user.ID, err)
		}
	}

	token, expiresAt, err := svc.jwtSvc.ToJWT(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	return &dto.DeviceAuthResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: expiresAt,
	}, nil
}

func (svc *AuthService) GetUser(userID string) (*model.User, error) {
	user, err := svc.userRepo.GetByID(userID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return user, nil
}

func (svc *AuthService) SetAvatarURL(userID, avatarURL string) error {
	if err := svc.userRepo.UpdateAvatarURL(userID, avatarURL); err != nil {
		return svc.sqlSvc.HandleError(err)
	}
	return nil
}

// RequiredAuth guards a route group and stashes the verified user id in the
// request locals.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		if userID == "" {
			return shared.NewUnauthorizedError(fmt.Errorf("empty user id"), "Unauthorized")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
