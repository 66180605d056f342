package domain

import "time"

const PurposePasswordReset = "password_reset"

// ResetCode is a single-use numeric code bound to one user and one purpose.
type ResetCode struct {
	ID        int64
	UserID    string
	Code      int
	Purpose   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type ForgotPasswordRequest struct {
	Login string `json:"username_or_phone_number_or_email" validate:"required"`
}

type NewPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

// ResetTicket reports where a reset code was sent.
type ResetTicket struct {
	UserID  string `json:"user_id"`
	Channel string `json:"-"`
}

// ResetPasswordRequest redeems a code on behalf of the authenticated user.
type ResetPasswordRequest struct {
	Code        *int   `json:"code" validate:"required,min=0,max=999999"`
	NewPassword string `json:"new_password" validate:"required"`
}
