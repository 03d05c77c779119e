package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/dto"
	"github.com/dentallab/backend/internal/middleware"
	"github.com/dentallab/backend/internal/service"
	"github.com/dentallab/backend/pkg/logger"
	"github.com/dentallab/backend/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}
	if ok, msg := req.ValidateEmail(); !ok {
		response.ValidationError(c, msg)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Created(c, resp)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success(c, resp)
}

// RefreshToken handles POST /refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success(c, resp)
}

// Logout handles POST /logout (auth required). Revokes every session
// the caller owns.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), identity.ID); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Logged out", nil)
}

// UpdatePassword handles POST /update-password (auth required)
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.authService.UpdatePassword(c.Request.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Password updated", nil)
}

// ForgotPassword handles POST /forgot-password. The response is the
// same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.SuccessWithMessage(c, service.ForgotPasswordMessage, nil)
}

// ResetPassword handles POST /reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.authService.ResetPasswordWithToken(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Password has been reset", nil)
}

// Me handles GET /me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), identity.ID)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success(c, dto.NewUserResponse(user))
}

// SetActive handles PATCH /users/:id/active (admin only)
func (h *AuthHandler) SetActive(c *gin.Context) {
	id := c.Param("id")
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := h.authService.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.SuccessWithMessage(c, "User updated", nil)
}

// writeAuthError maps service errors onto the HTTP taxonomy.
func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		response.Error(c, 400, "EMAIL_ALREADY_EXISTS", "Email is already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(c, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, domain.ErrAccountInactive):
		response.Forbidden(c, "ACCOUNT_INACTIVE", "Account is deactivated")
	case errors.Is(err, domain.ErrInvalidRefreshToken), errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed), errors.Is(err, domain.ErrInvalidTokenKind):
		response.Unauthorized(c, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	case errors.Is(err, domain.ErrInvalidResetToken):
		response.Error(c, 400, "INVALID_RESET_TOKEN", "Invalid or expired reset token")
	case errors.Is(err, domain.ErrInvalidPassword):
		response.Unauthorized(c, "INVALID_PASSWORD", "Current password is incorrect")
	case errors.Is(err, domain.ErrUserNotFound):
		response.NotFound(c, "User not found")
	default:
		logger.Error("auth handler error", zap.Error(err), zap.String("path", c.FullPath()))
		response.InternalError(c, err)
	}
}
