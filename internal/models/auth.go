package models

// Actions reported to the client when sign-in cannot complete normally.
const (
	ActionExpired        = "EXPIRED"
	ActionChangePassword = "FORCE_CHANGE_PASSWORD"
)

type SignupRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,max=25"`
	Username         string `json:"username" validate:"required,min=3,max=25"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	CaptchaToken     string `json:"captchaToken"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	CsrfToken string `json:"csrf_token"`
	User      User   `json:"user"`
}
