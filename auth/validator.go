package auth

import (
	"github.com/go-playground/validator/v10"

	apperrors "messagely/errors"
)

var validate = validator.New()

// RegisterRequest carries the full registration payload. Every field is
// required; the username doubles as the immutable primary key.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=1,max=64"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.Validation("invalid registration: %v", err)
	}
	return nil
}

// SendRequest is the payload for posting a message. FromUsername is
// optional; when present it must match the caller's token identity, which
// the message service enforces.
type SendRequest struct {
	FromUsername string `json:"from_username" validate:"omitempty,min=1"`
	ToUsername   string `json:"to_username" validate:"required,min=1"`
	Body         string `json:"body" validate:"required,min=1"`
}

func ValidateSend(req SendRequest) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.Validation("invalid message: %v", err)
	}
	return nil
}
