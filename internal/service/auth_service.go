package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/dto"
	"github.com/dentallab/backend/internal/repository"
	"github.com/dentallab/backend/internal/token"
	"github.com/dentallab/backend/pkg/logger"
	"github.com/dentallab/backend/pkg/mailer"
	"github.com/dentallab/backend/pkg/telemetry"
)

// ForgotPasswordMessage is returned for known and unknown emails alike,
// so the endpoint does not reveal which addresses are registered.
const ForgotPasswordMessage = "If an account with that email exists, a password reset link has been sent"

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	BcryptCost    int
	ResetTokenTTL time.Duration
	// RevokeOnRefresh deletes the consumed session row when a refresh
	// token is rotated. Off by default: the old refresh token stays
	// usable until its own expiry.
	RevokeOnRefresh bool
	// BaseURL is the public frontend origin used in reset-password links
	BaseURL string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a new user account and returns a token pair
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login authenticates a user and opens a session
	Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.AuthResponse, error)
	// RefreshToken exchanges a valid refresh token for a new token pair
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	// Logout deletes every session owned by the user
	Logout(ctx context.Context, userID string) error
	// UpdatePassword changes the password after verifying the old one
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// ForgotPassword starts the email reset flow; its outcome is
	// indistinguishable for known and unknown addresses
	ForgotPassword(ctx context.Context, email string) error
	// ResetPasswordWithToken consumes a reset token and sets the new password
	ResetPasswordWithToken(ctx context.Context, resetToken, newPassword string) error
	// GetUser retrieves a user by id
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// SetActive flips a user's active flag
	SetActive(ctx context.Context, id string, active bool) error
}

// authService implements AuthService
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	roleRepo    repository.RoleRepository
	issuer      *token.Issuer
	mail        mailer.Mailer
	config      *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	roleRepo repository.RoleRepository,
	issuer *token.Issuer,
	mail mailer.Mailer,
	config *AuthServiceConfig,
) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = 10
	}
	if config.ResetTokenTTL == 0 {
		config.ResetTokenTTL = time.Hour
	}
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		roleRepo:    roleRepo,
		issuer:      issuer,
		mail:        mail,
		config:      config,
	}
}

// Register creates a new user account and returns a token pair
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Role attachment is best-effort. A missing role seed leaves the
	// account roleless rather than failing the registration.
	if role, roleErr := s.roleRepo.GetByName(ctx, domain.RoleUser); roleErr != nil || role == nil {
		logger.Warn("default role lookup failed, user created without role",
			zap.String("user_id", user.ID), zap.Error(roleErr))
	} else if attachErr := s.roleRepo.AttachToUser(ctx, user.ID, role.ID); attachErr != nil {
		logger.Warn("default role attach failed, user created without role",
			zap.String("user_id", user.ID), zap.Error(attachErr))
	} else {
		user.Roles = []string{domain.RoleUser}
	}

	s.sendWelcomeEmail(ctx, user)

	resp, err := s.issueSession(ctx, user, "", "")
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Login authenticates a user and opens a session
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	// Checked only after the password verified, so a brute-force attempt
	// with a wrong password cannot learn that the account is disabled.
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("failed to stamp last login", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return s.issueSession(ctx, user, userAgent, ip)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// The token must both verify as a signed refresh token and match an
// unexpired session row.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.RefreshToken")
	defer span.End()

	userID, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// A missing or deactivated account looks the same as a bad token,
	// so a stale refresh token does not reveal account status.
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidRefreshToken
	}

	if s.config.RevokeOnRefresh {
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			logger.Warn("failed to revoke consumed session", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	return s.issueSession(ctx, user, session.UserAgent, session.IP)
}

// Logout deletes every session owned by the user, revoking all of their
// outstanding refresh tokens across devices.
func (s *authService) Logout(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Logout")
	defer span.End()

	return s.sessionRepo.DeleteByUserID(ctx, userID)
}

// UpdatePassword changes the password after verifying the old one.
// Existing sessions stay valid.
func (s *authService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.UpdatePassword")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// ForgotPassword starts the email reset flow. It succeeds with the same
// outward result whether or not the address is registered.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ForgotPassword")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	resetToken, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.config.ResetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashResetToken(resetToken), expiresAt); err != nil {
		return err
	}

	s.sendResetEmail(ctx, user, resetToken)
	return nil
}

// ResetPasswordWithToken consumes a reset token and sets the new
// password. Wrong and expired tokens fail the same way.
func (s *authService) ResetPasswordWithToken(ctx context.Context, resetToken, newPassword string) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ResetPasswordWithToken")
	defer span.End()

	user, err := s.userRepo.GetByResetToken(ctx, hashResetToken(resetToken))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return err
	}

	// Clears the token fields together with the password write so the
	// token cannot be replayed.
	return s.userRepo.ResetPassword(ctx, user.ID, string(hashedPassword))
}

// GetUser retrieves a user by id
func (s *authService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// SetActive flips a user's active flag
func (s *authService) SetActive(ctx context.Context, id string, active bool) error {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.SetActive")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return s.userRepo.SetActive(ctx, id, active)
}

// issueSession mints a token pair and persists the session row backing
// the refresh token.
func (s *authService) issueSession(ctx context.Context, user *domain.User, userAgent, ip string) (*dto.AuthResponse, error) {
	accessToken, err := s.issuer.IssueAccessToken(user.ID, user.Email, user.Roles, 0)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		IP:           ip,
		ExpiresAt:    now.Add(s.issuer.RefreshTokenTTL()),
		CreatedAt:    now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	pair := &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.issuer.AccessTokenTTL().Seconds()),
	}
	resp := dto.NewAuthResponse(pair, user)
	return &resp, nil
}

// sendWelcomeEmail is best-effort; failures are logged, never surfaced.
func (s *authService) sendWelcomeEmail(ctx context.Context, user *domain.User) {
	if s.mail == nil {
		return
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your dental lab account is ready. You can sign in at <a href=%q>%s</a>.</p>",
		user.FirstName, s.config.BaseURL, s.config.BaseURL,
	)
	if err := s.mail.Send(ctx, user.Email, "Welcome to the lab portal", body); err != nil {
		logger.Error("welcome email failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// sendResetEmail is best-effort; failures are logged, never surfaced.
func (s *authService) sendResetEmail(ctx context.Context, user *domain.User, resetToken string) {
	if s.mail == nil {
		return
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.BaseURL, resetToken)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received a request to reset your password. The link below is valid for %s.</p><p><a href=%q>Reset your password</a></p><p>If you did not request this, you can ignore this email.</p>",
		user.FirstName, s.config.ResetTokenTTL, link,
	)
	if err := s.mail.Send(ctx, user.Email, "Reset your password", body); err != nil {
		logger.Error("reset email failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// generateResetToken returns a hex-encoded 32-byte random token. Only
// its SHA-256 hash is ever persisted.
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(resetToken string) string {
	sum := sha256.Sum256([]byte(resetToken))
	return hex.EncodeToString(sum[:])
}
