package account

import "time"

// SignUpRequest is the registration form
type SignUpRequest struct {
	FullName        string `json:"full_name" validate:"required,max=100"`
	Nickname        string `json:"nickname" validate:"required,max=50"`
	Username        string `json:"username" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	AcceptTerms     bool   `json:"accept_terms" validate:"required"`
}

// SignInRequest is the login form
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignOutRequest carries the refresh token of the session to end
type SignOutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SignUpInput is what a SessionProvider needs to register a user
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Nickname string
	Username string
}

// Session is an authenticated session issued by the identity provider
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignUpResponse is returned after a successful registration
type SignUpResponse struct {
	Success  bool     `json:"success"`
	UserID   string   `json:"user_id"`
	Message  string   `json:"message"`
	Strength Strength `json:"password_strength"`
}
