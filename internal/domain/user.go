package domain

import "time"

// Role values stored on users and embedded in session tokens.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	UserID                 string    `json:"id" dynamodbav:"user_id"`
	Email                  string    `json:"email" dynamodbav:"email"`
	PasswordHash           string    `json:"-" dynamodbav:"password_hash"`
	Role                   string    `json:"role" dynamodbav:"role"`
	EmailVerified          bool      `json:"email_verified" dynamodbav:"email_verified"`
	EmailVerificationToken *string   `json:"-" dynamodbav:"email_verification_token"`
	CreatedAt              time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyTwoFactorRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}
