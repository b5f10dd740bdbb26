package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockService struct {
	SignUpFunc  func(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	SignInFunc  func(ctx context.Context, req SignInRequest) (*Session, error)
	SignOutFunc func(ctx context.Context, req SignOutRequest) error
}

func (m *mockService) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	return m.SignUpFunc(ctx, req)
}

func (m *mockService) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	return m.SignInFunc(ctx, req)
}

func (m *mockService) SignOut(ctx context.Context, req SignOutRequest) error {
	return m.SignOutFunc(ctx, req)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestHandler_SignUp(t *testing.T) {
	h := NewHandler(&mockService{
		SignUpFunc: func(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
			return &SignUpResponse{Success: true, UserID: "kc-1", Strength: PasswordStrength(req.Password)}, nil
		},
	})

	w := postJSON(t, h.SignUp, validSignUp())

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp SignUpResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "kc-1" || resp.Strength.Score != 4 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandler_SignUp_InvalidJSON(t *testing.T) {
	h := NewHandler(&mockService{})

	w := postJSON(t, h.SignUp, "{not json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		status    int
		errorType string
	}{
		{"Validation", &ValidationError{Field: "email", Message: "Please enter a valid email address"}, http.StatusBadRequest, "validation_error"},
		{"Mismatch", ErrPasswordMismatch, http.StatusBadRequest, "password_mismatch"},
		{"Credentials", ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"Exists", ErrAccountExists, http.StatusConflict, "account_exists"},
		{"Unavailable", ErrProviderUnavailable, http.StatusServiceUnavailable, "provider_unavailable"},
		{"Other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&mockService{
				SignInFunc: func(ctx context.Context, req SignInRequest) (*Session, error) {
					return nil, tc.err
				},
			})

			w := postJSON(t, h.SignIn, SignInRequest{Email: "a@b.co", Password: "x"})

			if w.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, w.Code)
			}
			var resp ErrorResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Error != tc.errorType {
				t.Errorf("expected %s, got %s", tc.errorType, resp.Error)
			}
		})
	}
}

func TestHandler_SignIn(t *testing.T) {
	h := NewHandler(&mockService{
		SignInFunc: func(ctx context.Context, req SignInRequest) (*Session, error) {
			return &Session{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
		},
	})

	w := postJSON(t, h.SignIn, SignInRequest{Email: "a@b.co", Password: "x"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp SessionResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Session == nil || resp.Session.RefreshToken != "refresh" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandler_SignOut(t *testing.T) {
	h := NewHandler(&mockService{
		SignOutFunc: func(ctx context.Context, req SignOutRequest) error { return nil },
	})

	w := postJSON(t, h.SignOut, SignOutRequest{RefreshToken: "refresh"})

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}
