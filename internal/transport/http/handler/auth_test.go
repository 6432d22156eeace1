package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-watchlist-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *mockAuthService) VerifyTwoFactor(ctx context.Context, code, tempToken string) (string, error) {
	args := m.Called(ctx, code, tempToken)
	return args.String(0), args.Error(1)
}
func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestRegisterHandler_Created(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, domain.RegisterRequest{
		Email: "a@x.com", Password: "password1",
	}).Return(nil)

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"password1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, mock.Anything).
		Return(fmt.Errorf("email already registered: %w", domain.ErrConflict))

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"password1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterHandler_ValidationRejectsShortPassword(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"short"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_ReturnsTempToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, domain.LoginRequest{
		Email: "a@x.com", Password: "password1",
	}).Return("temp-token", nil)

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"password1"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "temp-token", resp.TempToken)
	assert.NotEmpty(t, resp.Message)
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized))

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"wrong-one"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTwoFactorHandler_MissingBearer(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/verify-2fa",
		strings.NewReader(`{"code":"123456"}`))
	rec := httptest.NewRecorder()
	h.VerifyTwoFactor(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTwoFactorHandler_InvalidCodeShape(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/verify-2fa",
		strings.NewReader(`{"code":"12ab56"}`))
	req.Header.Set("Authorization", "Bearer temp-token")
	rec := httptest.NewRecorder()
	h.VerifyTwoFactor(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyTwoFactorHandler_ReturnsAccessToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyTwoFactor", mock.Anything, "123456", "temp-token").
		Return("access-token", nil)

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/verify-2fa",
		strings.NewReader(`{"code":"123456"}`))
	req.Header.Set("Authorization", "Bearer temp-token")
	rec := httptest.NewRecorder()
	h.VerifyTwoFactor(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access-token", resp.AccessToken)
}

func TestVerifyEmailHandler_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/verify-email", nil)
	rec := httptest.NewRecorder()
	h.VerifyEmail(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmailHandler_Expired(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyEmail", mock.Anything, "tok").
		Return(fmt.Errorf("verification token has expired: %w", domain.ErrBadRequest))

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/verify-email?token=tok", nil)
	rec := httptest.NewRecorder()
	h.VerifyEmail(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmailHandler_Unknown(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyEmail", mock.Anything, "tok").Return(domain.ErrNotFound)

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/verify-email?token=tok", nil)
	rec := httptest.NewRecorder()
	h.VerifyEmail(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyEmailHandler_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyEmail", mock.Anything, "tok").Return(nil)

	h := NewAuthHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/verify-email?token=tok", nil)
	rec := httptest.NewRecorder()
	h.VerifyEmail(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
