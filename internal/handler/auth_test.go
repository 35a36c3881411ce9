package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovaehr/authapi/internal/apperror"
	"github.com/sovaehr/authapi/internal/config"
	"github.com/sovaehr/authapi/internal/domain"
)

type MockAuthService struct {
	MockSignIn         func(ctx context.Context, email domain.Email, password domain.Password) (string, error)
	MockSignUp         func(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error
	MockSignOut        func(ctx context.Context, token string) error
	MockDeleteUser     func(ctx context.Context, userID string) error
	MockRetrieveUserID func(ctx context.Context, email domain.Email) (string, error)
}

func (m *MockAuthService) SignIn(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
	if m.MockSignIn != nil {
		return m.MockSignIn(ctx, email, password)
	}
	return "", nil
}

func (m *MockAuthService) SignUp(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error {
	if m.MockSignUp != nil {
		return m.MockSignUp(ctx, email, password, redirectTo)
	}
	return nil
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	if m.MockSignOut != nil {
		return m.MockSignOut(ctx, token)
	}
	return nil
}

func (m *MockAuthService) DeleteUser(ctx context.Context, userID string) error {
	if m.MockDeleteUser != nil {
		return m.MockDeleteUser(ctx, userID)
	}
	return nil
}

func (m *MockAuthService) RetrieveUserID(ctx context.Context, email domain.Email) (string, error) {
	if m.MockRetrieveUserID != nil {
		return m.MockRetrieveUserID(ctx, email)
	}
	return "", nil
}

func newRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) apperror.Body {
	t.Helper()
	var body apperror.Body
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSignInHandler(t *testing.T) {
	cfg := config.ForTests()

	t.Run("successful request returns token", func(t *testing.T) {
		mock := &MockAuthService{
			MockSignIn: func(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
				assert.Equal(t, "test@example.com", email.Expose())
				return "access-token", nil
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signin", []byte(`{"email":"test@example.com","password":"Password123!"}`))
		rr := httptest.NewRecorder()
		h.SignIn(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "access-token", body["token"])
	})

	t.Run("invalid json body", func(t *testing.T) {
		h := New(&MockAuthService{}, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signin", []byte(`{invalid`))
		rr := httptest.NewRecorder()
		h.SignIn(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_input", decodeErrorBody(t, rr).Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := New(&MockAuthService{}, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signin", []byte(`{"email":"test@example.com"}`))
		rr := httptest.NewRecorder()
		h.SignIn(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_input", decodeErrorBody(t, rr).Code)
	})

	t.Run("validation happens before the remote call", func(t *testing.T) {
		called := false
		mock := &MockAuthService{
			MockSignIn: func(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
				called = true
				return "", nil
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signin", []byte(`{"email":"not-an-email","password":"Password123!"}`))
		rr := httptest.NewRecorder()
		h.SignIn(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_email", decodeErrorBody(t, rr).Code)
		assert.False(t, called)
	})

	t.Run("service error propagates", func(t *testing.T) {
		mock := &MockAuthService{
			MockSignIn: func(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
				return "", apperror.SignIn("Invalid login credentials")
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signin", []byte(`{"email":"test@example.com","password":"Password123!"}`))
		rr := httptest.NewRecorder()
		h.SignIn(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "sign_in_error", decodeErrorBody(t, rr).Code)
	})
}

func TestSignUpHandler(t *testing.T) {
	cfg := config.ForTests()

	t.Run("created", func(t *testing.T) {
		mock := &MockAuthService{}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signup", []byte(`{"email":"new@example.com","password":"Password123!"}`))
		rr := httptest.NewRecorder()
		h.SignUp(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Signup successful, please check your email to confirm.", body["message"])
	})

	t.Run("request redirect wins over configured default", func(t *testing.T) {
		cfg := config.ForTests()
		cfg.EmailConfirmRedirect = "https://default.example.com"

		var gotRedirect string
		mock := &MockAuthService{
			MockSignUp: func(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error {
				gotRedirect = redirectTo
				return nil
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signup", []byte(`{"email":"new@example.com","password":"Password123!","redirect_to":"https://custom.example.com"}`))
		rr := httptest.NewRecorder()
		h.SignUp(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "https://custom.example.com", gotRedirect)
	})

	t.Run("configured default used when request has none", func(t *testing.T) {
		cfg := config.ForTests()
		cfg.EmailConfirmRedirect = "https://default.example.com"

		var gotRedirect string
		mock := &MockAuthService{
			MockSignUp: func(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error {
				gotRedirect = redirectTo
				return nil
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signup", []byte(`{"email":"new@example.com","password":"Password123!"}`))
		rr := httptest.NewRecorder()
		h.SignUp(rr, req)

		assert.Equal(t, "https://default.example.com", gotRedirect)
	})

	t.Run("weak password rejected with generic message", func(t *testing.T) {
		h := New(&MockAuthService{}, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signup", []byte(`{"email":"new@example.com","password":"weak"}`))
		rr := httptest.NewRecorder()
		h.SignUp(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeErrorBody(t, rr)
		assert.Equal(t, "weak_password", body.Code)
		assert.Equal(t, "Password does not meet complexity requirements", body.Message)
	})

	t.Run("email already in use", func(t *testing.T) {
		mock := &MockAuthService{
			MockSignUp: func(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error {
				return apperror.EmailAlreadyInUse()
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/signup", []byte(`{"email":"taken@example.com","password":"Password123!"}`))
		rr := httptest.NewRecorder()
		h.SignUp(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "email_already_in_use", decodeErrorBody(t, rr).Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	cfg := config.ForTests()

	t.Run("success", func(t *testing.T) {
		var gotUserID string
		mock := &MockAuthService{
			MockDeleteUser: func(ctx context.Context, userID string) error {
				gotUserID = userID
				return nil
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodDelete, "/auth/delete_user", []byte(`{"user_id":"user-42"}`))
		rr := httptest.NewRecorder()
		h.DeleteUser(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-42", gotUserID)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "User deleted successfully", body["message"])
	})

	t.Run("provider failure maps to 500", func(t *testing.T) {
		mock := &MockAuthService{
			MockDeleteUser: func(ctx context.Context, userID string) error {
				return apperror.DeleteUser("remote refused")
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodDelete, "/auth/delete_user", []byte(`{"user_id":"user-42"}`))
		rr := httptest.NewRecorder()
		h.DeleteUser(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "delete_user_error", decodeErrorBody(t, rr).Code)
	})
}

func TestRetrieveUserIDHandler(t *testing.T) {
	cfg := config.ForTests()

	t.Run("success", func(t *testing.T) {
		mock := &MockAuthService{
			MockRetrieveUserID: func(ctx context.Context, email domain.Email) (string, error) {
				return "id-7", nil
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/retrieve_user_id", []byte(`{"email":"test@example.com"}`))
		rr := httptest.NewRecorder()
		h.RetrieveUserID(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "id-7", body["user_id"])
	})

	t.Run("unknown email yields 404", func(t *testing.T) {
		mock := &MockAuthService{
			MockRetrieveUserID: func(ctx context.Context, email domain.Email) (string, error) {
				return "", apperror.UserNotFound()
			},
		}
		h := New(mock, cfg)

		req := newRequest(t, http.MethodPost, "/auth/retrieve_user_id", []byte(`{"email":"ghost@example.com"}`))
		rr := httptest.NewRecorder()
		h.RetrieveUserID(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "user_not_found", decodeErrorBody(t, rr).Code)
	})
}

func TestHealthHandler(t *testing.T) {
	h := New(&MockAuthService{}, config.ForTests())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
