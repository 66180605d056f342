package domain

import "time"

const DefaultAvatar = "media/profile_pictures/default.png"

type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Password    string     `json:"-"`
	FullName    string     `json:"full_name"`
	Gender      *string    `json:"gender,omitempty"`
	BirthDate   *time.Time `json:"day_of_birth,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	AvatarPic   string     `json:"avatar_pic"`
	Email       *string    `json:"email,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Identity is the verified caller of an authenticated request.
type Identity struct {
	UserID   string
	Username string
}

type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,username"`
	Password    string  `json:"password" validate:"required"`
	FullName    string  `json:"full_name" validate:"required,max=50"`
	Gender      *string `json:"gender" validate:"omitempty,max=10"`
	Email       *string `json:"email" validate:"omitempty,max=255,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
}

type LoginRequest struct {
	Login    string `json:"username_or_phone_number_or_email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UpdateUserRequest struct {
	Username    *string    `json:"username" validate:"omitempty,username"`
	FullName    *string    `json:"full_name" validate:"omitempty,max=50"`
	Gender      *string    `json:"gender" validate:"omitempty,max=10"`
	BirthDate   *time.Time `json:"day_of_birth"`
	Bio         *string    `json:"bio"`
	Email       *string    `json:"email" validate:"omitempty,max=255,email"`
	PhoneNumber *string    `json:"phone_number" validate:"omitempty,phone"`
}

type ChangePasswordRequest struct {
	LastPassword string `json:"last_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required"`
}

// UserProfile is a user as seen by other users, with their posts.
type UserProfile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	BirthDate *time.Time `json:"day_of_birth,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	Gender    *string    `json:"gender,omitempty"`
	AvatarPic string     `json:"avatar_pic"`
	Posts     []*Post    `json:"posts"`
}
