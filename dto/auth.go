package dto

import "time"

type DeviceAuthRequest struct {
	DeviceID string `json:"device_id" validate:"required,min=8,max=128"`
	Username string `json:"username" validate:"omitempty,min=1,max=30"`
}

func (r DeviceAuthRequest) Validate() error {
	return validate.Struct(r)
}

type DeviceAuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}
