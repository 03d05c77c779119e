package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dentallab/backend/internal/domain"
)

func TestRegisterRequest_ValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "valid email", email: "user@example.com", want: true},
		{name: "valid with plus", email: "user+tag@example.co.uk", want: true},
		{name: "missing at", email: "userexample.com", want: false},
		{name: "missing tld", email: "user@example", want: false},
		{name: "spaces", email: "user name@example.com", want: false},
		{name: "empty", email: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RegisterRequest{Email: tt.email}
			got, _ := r.ValidateEmail()
			if got != tt.want {
				t.Errorf("ValidateEmail() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserResponse_NeverLeaksCredentials(t *testing.T) {
	hash := "sha256hash"
	expiry := time.Now().Add(time.Hour)
	u := &domain.User{
		ID:               "u-1",
		Email:            "alice@example.com",
		PasswordHash:     "$2a$10$secret",
		FirstName:        "Alice",
		LastName:         "Smith",
		IsActive:         true,
		Roles:            []string{"USER"},
		ResetTokenHash:   &hash,
		ResetTokenExpiry: &expiry,
		CreatedAt:        time.Now(),
	}

	body, err := json.Marshal(NewUserResponse(u))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(body)
	if strings.Contains(payload, "secret") || strings.Contains(payload, "password") {
		t.Errorf("response leaks password hash: %s", payload)
	}
	if strings.Contains(payload, hash) {
		t.Errorf("response leaks reset token hash: %s", payload)
	}
}

func TestNewUserResponse_NilRoles(t *testing.T) {
	u := &domain.User{ID: "u-1", Email: "a@b.co", CreatedAt: time.Now()}
	resp := NewUserResponse(u)
	if resp.Roles == nil {
		t.Fatal("Roles should be an empty slice, not nil")
	}
	body, _ := json.Marshal(resp)
	if !strings.Contains(string(body), `"roles":[]`) {
		t.Errorf("roles should serialize as empty array: %s", body)
	}
}

func TestCreateCaseRequest_ParseDueDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		isNil  bool
	}{
		{name: "date only", input: "2026-09-15", wantOK: true},
		{name: "rfc3339", input: "2026-09-15T10:00:00Z", wantOK: true},
		{name: "empty is allowed", input: "", wantOK: true, isNil: true},
		{name: "garbage", input: "next tuesday", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CreateCaseRequest{DueDate: tt.input}
			got, ok := r.ParseDueDate()
			if ok != tt.wantOK {
				t.Fatalf("ParseDueDate() ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK && tt.isNil != (got == nil) {
				t.Errorf("ParseDueDate() = %v, want nil=%v", got, tt.isNil)
			}
		})
	}
}
