package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/dto"
	"github.com/dentallab/backend/internal/middleware"
	"github.com/dentallab/backend/internal/service"
	"github.com/dentallab/backend/pkg/response"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	users        map[string]*domain.User
	registerErr  error
	loginErr     error
	refreshErr   error
	updatePwdErr error
	resetErr     error
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{users: make(map[string]*domain.User)}
}

func (m *MockAuthService) authResponse(email string) *dto.AuthResponse {
	user := &domain.User{
		ID:        "user-123",
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
		Roles:     []string{domain.RoleUser},
		CreatedAt: time.Now(),
	}
	m.users[user.ID] = user
	pair := &domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token", ExpiresIn: 3600}
	resp := dto.NewAuthResponse(pair, user)
	return &resp
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.authResponse(req.Email), nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.AuthResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.authResponse(req.Email), nil
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.authResponse("refreshed@example.com"), nil
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error { return nil }

func (m *MockAuthService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return m.updatePwdErr
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error { return nil }

func (m *MockAuthService) ResetPasswordWithToken(ctx context.Context, resetToken, newPassword string) error {
	return m.resetErr
}

func (m *MockAuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *MockAuthService) SetActive(ctx context.Context, id string, active bool) error { return nil }

// fakeIdentity injects an authenticated identity, standing in for the
// token middleware.
func fakeIdentity(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, &domain.Identity{
			ID:    id,
			Email: "test@example.com",
			Roles: []string{domain.RoleUser},
		})
		c.Next()
	}
}

func setupAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/refresh-token", h.RefreshToken)
	r.POST("/forgot-password", h.ForgotPassword)
	r.POST("/reset-password", h.ResetPassword)
	r.POST("/logout", fakeIdentity("user-123"), h.Logout)
	r.POST("/update-password", fakeIdentity("user-123"), h.UpdatePassword)
	r.GET("/me", fakeIdentity("user-123"), h.Me)
	return r
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v, body %s", err, w.Body)
	}
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r := setupAuthRouter(NewMockAuthService())
		w := postJSON(r, "/register", dto.RegisterRequest{
			Email:     "alice@example.com",
			Password:  "password123",
			FirstName: "Alice",
			LastName:  "Smith",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body)
		}
		resp := decodeResponse(t, w)
		if !resp.Success {
			t.Error("success = false, want true")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		r := setupAuthRouter(NewMockAuthService())
		w := postJSON(r, "/register", dto.RegisterRequest{Email: "bad", Password: "short"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := NewMockAuthService()
		svc.registerErr = domain.ErrEmailAlreadyExists
		r := setupAuthRouter(svc)
		w := postJSON(r, "/register", dto.RegisterRequest{
			Email:     "alice@example.com",
			Password:  "password123",
			FirstName: "Alice",
			LastName:  "Smith",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if resp := decodeResponse(t, w); resp.Code != "EMAIL_ALREADY_EXISTS" {
			t.Errorf("code = %q, want EMAIL_ALREADY_EXISTS", resp.Code)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("invalid credentials", func(t *testing.T) {
		svc := NewMockAuthService()
		svc.loginErr = domain.ErrInvalidCredentials
		r := setupAuthRouter(svc)
		w := postJSON(r, "/login", dto.LoginRequest{Email: "a@b.co", Password: "wrong"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		if resp := decodeResponse(t, w); resp.Code != "INVALID_CREDENTIALS" {
			t.Errorf("code = %q, want INVALID_CREDENTIALS", resp.Code)
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		svc := NewMockAuthService()
		svc.loginErr = domain.ErrAccountInactive
		r := setupAuthRouter(svc)
		w := postJSON(r, "/login", dto.LoginRequest{Email: "a@b.co", Password: "password123"})
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	svc := NewMockAuthService()
	svc.refreshErr = domain.ErrInvalidRefreshToken
	r := setupAuthRouter(svc)
	w := postJSON(r, "/refresh-token", dto.RefreshTokenRequest{RefreshToken: "stale"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "INVALID_REFRESH_TOKEN" {
		t.Errorf("code = %q, want INVALID_REFRESH_TOKEN", resp.Code)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	r := setupAuthRouter(NewMockAuthService())
	known := postJSON(r, "/forgot-password", dto.ForgotPasswordRequest{Email: "known@example.com"})
	unknown := postJSON(r, "/forgot-password", dto.ForgotPasswordRequest{Email: "unknown@example.com"})

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d, want 200, 200", known.Code, unknown.Code)
	}
	knownResp := decodeResponse(t, known)
	unknownResp := decodeResponse(t, unknown)
	if knownResp.Message != unknownResp.Message {
		t.Errorf("messages differ: %q vs %q", knownResp.Message, unknownResp.Message)
	}
	if knownResp.Message != service.ForgotPasswordMessage {
		t.Errorf("message = %q, want %q", knownResp.Message, service.ForgotPasswordMessage)
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	svc := NewMockAuthService()
	svc.resetErr = domain.ErrInvalidResetToken
	r := setupAuthRouter(svc)
	w := postJSON(r, "/reset-password", dto.ResetPasswordRequest{Token: "bogus", NewPassword: "newpassword1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "INVALID_RESET_TOKEN" {
		t.Errorf("code = %q, want INVALID_RESET_TOKEN", resp.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	svc := NewMockAuthService()
	svc.authResponse("me@example.com")
	r := setupAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body)
	}
	if body := w.Body.String(); bytes.Contains([]byte(body), []byte("password")) {
		t.Errorf("payload mentions password: %s", body)
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	svc := NewMockAuthService()
	svc.updatePwdErr = domain.ErrInvalidPassword
	r := setupAuthRouter(svc)
	w := postJSON(r, "/update-password", dto.UpdatePasswordRequest{OldPassword: "wrong", NewPassword: "newpassword1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "INVALID_PASSWORD" {
		t.Errorf("code = %q, want INVALID_PASSWORD", resp.Code)
	}
}
