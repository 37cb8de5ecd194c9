package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/pkg/bcrypt"
	"github.com/flashframe/flashframe-backend/pkg/captcha"
	"github.com/flashframe/flashframe-backend/pkg/jwt"
)

// Password reset links stay valid for one hour.
const resetTokenExpiry = time.Hour

type userStore interface {
	Create(user *models.User) error
	FindByUsername(username string) (*models.User, error)
	GetByUsername(organizationID, username string) (*models.User, error)
	UsernameExists(username string) (bool, error)
	UpdatePassword(organizationID, username, hashedPassword string) error
}

type organizationCreator interface {
	Create(org *models.Organization) error
}

type sessionVersions interface {
	Version(ctx context.Context, organization, username string) (int64, error)
	Invalidate(ctx context.Context, organization, username string) error
}

type mailer interface {
	SendWelcomeEmail(to, name, organization string) error
	SendPasswordResetEmail(to, resetToken string) error
}

type AuthService struct {
	users    userStore
	orgs     organizationCreator
	sessions sessionVersions
	email    mailer
	logger   *zap.Logger
}

func NewAuthService(users userStore, orgs organizationCreator, sessions sessionVersions, email mailer, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		orgs:     orgs,
		sessions: sessions,
		email:    email,
		logger:   logger,
	}
}

// Signup provisions a new organization with its root user. The
// organization starts with the standard credit balance and the root user
// carries every permission.
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	ok, err := captcha.VerifyTurnstile(req.CaptchaToken)
	if err != nil {
		s.logger.Error("captcha verification failed", zap.Error(err))
		return nil, NewError(502, "could not verify captcha")
	}
	if !ok {
		return nil, NewError(400, "captcha verification failed")
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.UsernameExists(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewError(400, "username is already taken")
	}

	hashed, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	orgID := uuid.New().String()
	org := &models.Organization{
		ID:       orgID,
		Name:     req.OrganizationName,
		RootUser: username,
		Tokens:   models.StartingTokens,
	}
	if err := s.orgs.Create(org); err != nil {
		return nil, err
	}

	user := &models.User{
		OrganizationID: orgID,
		Username:       username,
		Email:          email,
		Password:       hashed,
		Root:           true,
		Permissions: models.StringList{
			string(models.PermissionCreateEvents),
			string(models.PermissionManageEvents),
			string(models.PermissionManageOrg),
		},
		EventsCreated:   models.StringList{},
		EventsLimit:     0,
		EventsLimitType: models.LimitUnlimited,
	}
	if err := s.users.Create(user); err != nil {
		// Concurrent signup won the username between the existence
		// check and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewError(400, "username is already taken")
		}
		return nil, err
	}

	go func() {
		if err := s.email.SendWelcomeEmail(email, username, req.OrganizationName); err != nil {
			s.logger.Error("welcome email failed", zap.String("email", email), zap.Error(err))
		}
	}()

	return user, nil
}

// Signin authenticates a user and issues a session token. The error
// message is the same whether the username or the password is wrong.
// Expired accounts get their live sessions invalidated before the reject.
func (s *AuthService) Signin(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.users.FindByUsername(username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(401, "wrong username or password")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return nil, NewError(401, "wrong username or password")
	}

	if user.Expired(time.Now()) {
		if err := s.sessions.Invalidate(ctx, user.OrganizationID, user.Username); err != nil {
			s.logger.Error("session invalidation failed",
				zap.String("organization", user.OrganizationID),
				zap.String("username", user.Username),
				zap.Error(err))
		}
		return nil, NewActionError(401, "account has expired", models.ActionExpired)
	}

	version, err := s.sessions.Version(ctx, user.OrganizationID, user.Username)
	if err != nil {
		return nil, err
	}

	csrfToken := uuid.New().String()
	token, err := jwt.GenerateToken(jwt.AuthClaims{
		Organization:    user.OrganizationID,
		Username:        user.Username,
		Root:            user.Root,
		Permissions:     user.Permissions,
		EventsLimit:     user.EventsLimit,
		EventsLimitType: string(user.EventsLimitType),
		Csrf:            csrfToken,
		SessionVersion:  version,
	})
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:     token,
		CsrfToken: csrfToken,
		User:      *user,
	}, nil
}

// Signout bumps the user's session version, invalidating every token
// issued before this moment.
func (s *AuthService) Signout(ctx context.Context, organization, username string) error {
	return s.sessions.Invalidate(ctx, organization, username)
}

// ForgotPassword sends a reset link when the username exists. The caller
// gets a success response either way so usernames cannot be probed.
func (s *AuthService) ForgotPassword(ctx context.Context, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.FindByUsername(username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := jwt.GenerateResetToken(user.OrganizationID, user.Username, resetTokenExpiry)
	if err != nil {
		return err
	}

	go func() {
		if err := s.email.SendPasswordResetEmail(user.Email, token); err != nil {
			s.logger.Error("password reset email failed", zap.String("username", username), zap.Error(err))
		}
	}()

	return nil
}

// ResetPassword consumes a reset token, stores the new hash, and kills all
// existing sessions for the user.
func (s *AuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	organization, username, err := jwt.ValidateResetToken(req.Token)
	if err != nil {
		return NewError(400, "invalid or expired reset token")
	}

	hashed, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(organization, username, hashed); err != nil {
		return err
	}

	return s.sessions.Invalidate(ctx, organization, username)
}
