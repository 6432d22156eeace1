package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-watchlist-api/internal/domain"
	jwtinfra "github.com/go-watchlist-api/internal/infrastructure/jwt"
	"github.com/go-watchlist-api/internal/pkg/password"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.EmailVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, token string) (*domain.EmailVerification, error) {
	args := m.Called(ctx, token)
	if v, _ := args.Get(0).(*domain.EmailVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Consume(ctx context.Context, token, userEmail string) error {
	return m.Called(ctx, token, userEmail).Error(0)
}

type mockTwoFactorStore struct{ mock.Mock }

func (m *mockTwoFactorStore) Put(ctx context.Context, c *domain.TwoFactorCode) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockTwoFactorStore) Consume(ctx context.Context, userID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- builder ---

func newTestService(t *testing.T, us *mockUserStore, vs *mockVerificationStore, ts *mockTwoFactorStore, ml *mockMailer) (Service, *jwtinfra.Provider) {
	t.Helper()
	tokens, err := jwtinfra.NewProvider("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(ServiceDeps{
		UserRepo:         us,
		VerificationRepo: vs,
		TwoFactorRepo:    ts,
		Mailer:           ml,
		Tokens:           tokens,
		AppURL:           "http://localhost:3000",
	}), tokens
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := password.Hash(plain)
	require.NoError(t, err)
	return h
}

// --- Register ---

func TestRegister_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(domain.ErrConflict)

	svc, _ := newTestService(t, us, nil, nil, nil)
	err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@x.com", Password: "password1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	vs := &mockVerificationStore{}
	ml := &mockMailer{}

	var created *domain.User
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	vs.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.EmailVerification) bool {
		return len(v.Token) == 64 && v.ExpiresAt > time.Now().Add(23*time.Hour).Unix()
	})).Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc, _ := newTestService(t, us, vs, nil, ml)
	err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@x.com", Password: "password1",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.False(t, created.EmailVerified)
	require.NotNil(t, created.EmailVerificationToken)
	assert.True(t, password.Verify("password1", created.PasswordHash))
	us.AssertExpectations(t)
	vs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	us := &mockUserStore{}
	vs := &mockVerificationStore{}
	ml := &mockMailer{}

	us.On("Create", mock.Anything, mock.Anything).Return(nil)
	vs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc, _ := newTestService(t, us, vs, nil, ml)
	err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@x.com", Password: "password1",
	})
	assert.NoError(t, err)
}

// --- Login (step 1) ---

func TestLogin_UnknownEmail_GenericMessage(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domain.ErrNotFound)

	svc, _ := newTestService(t, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email: "nobody@x.com", Password: "password1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Contains(t, err.Error(), "incorrect email or password")
}

func TestLogin_WrongPassword_SameMessageAsUnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Email: "a@x.com", PasswordHash: mustHash(t, "password1"), EmailVerified: true,
	}, nil)

	svc, _ := newTestService(t, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email: "a@x.com", Password: "wrongpassword",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Contains(t, err.Error(), "incorrect email or password")
}

func TestLogin_UnverifiedEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Email: "a@x.com", PasswordHash: mustHash(t, "password1"), EmailVerified: false,
	}, nil)

	svc, _ := newTestService(t, us, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email: "a@x.com", Password: "password1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Contains(t, err.Error(), "verify your email")
}

func TestLogin_HappyPath_StoresCodeAndIssuesTempToken(t *testing.T) {
	us := &mockUserStore{}
	ts := &mockTwoFactorStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{
		UserID: "u1", Email: "a@x.com", Role: domain.RoleUser,
		PasswordHash: mustHash(t, "password1"), EmailVerified: true,
	}, nil)
	var stored *domain.TwoFactorCode
	ts.On("Put", mock.Anything, mock.AnythingOfType("*domain.TwoFactorCode")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.TwoFactorCode) }).
		Return(nil)
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	svc, tokens := newTestService(t, us, nil, ts, ml)
	tempToken, err := svc.Login(context.Background(), domain.LoginRequest{
		Email: "a@x.com", Password: "password1",
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), stored.Code)
	assert.False(t, stored.IsUsed)
	assert.InDelta(t, time.Now().Add(10*time.Minute).Unix(), stored.ExpiresAt, 5)

	claims, err := tokens.Verify(tempToken)
	require.NoError(t, err)
	assert.True(t, claims.Temp)
	assert.Equal(t, "u1", claims.UserID())
}

// --- VerifyTwoFactor (step 2) ---

func TestVerifyTwoFactor_GarbageToken(t *testing.T) {
	svc, _ := newTestService(t, nil, nil, nil, nil)
	_, err := svc.VerifyTwoFactor(context.Background(), "123456", "not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyTwoFactor_RejectsSessionToken(t *testing.T) {
	// A full session token lacks the temp marker and must not pass step 2.
	svc, tokens := newTestService(t, nil, nil, nil, nil)
	sessionToken, err := tokens.SignSession("u1", "a@x.com", domain.RoleUser, true)
	require.NoError(t, err)

	_, err = svc.VerifyTwoFactor(context.Background(), "123456", sessionToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyTwoFactor_ExpiredTempToken(t *testing.T) {
	svc, _ := newTestService(t, nil, nil, nil, nil)

	claims := jwtinfra.Claims{
		Email: "a@x.com",
		Temp:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyTwoFactor(context.Background(), "123456", expired)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyTwoFactor_WrongCode(t *testing.T) {
	ts := &mockTwoFactorStore{}
	ts.On("Consume", mock.Anything, "u1", "000000").
		Return(domain.ErrUnauthorized)

	svc, tokens := newTestService(t, nil, nil, ts, nil)
	tempToken, err := tokens.SignTemp("u1", "a@x.com")
	require.NoError(t, err)

	_, err = svc.VerifyTwoFactor(context.Background(), "000000", tempToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyTwoFactor_HappyPath_RereadsUser(t *testing.T) {
	us := &mockUserStore{}
	ts := &mockTwoFactorStore{}

	ts.On("Consume", mock.Anything, "u1", "123456").Return(nil)
	// Role was promoted between step 1 and step 2; the session token must
	// carry the current role.
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@x.com", Role: domain.RoleAdmin, EmailVerified: true,
	}, nil)

	svc, tokens := newTestService(t, us, nil, ts, nil)
	tempToken, err := tokens.SignTemp("u1", "a@x.com")
	require.NoError(t, err)

	accessToken, err := svc.VerifyTwoFactor(context.Background(), "123456", tempToken)
	require.NoError(t, err)

	claims, err := tokens.Verify(accessToken)
	require.NoError(t, err)
	assert.False(t, claims.Temp)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.True(t, claims.EmailVerified)
}

// --- VerifyEmail ---

func TestVerifyEmail_UnknownToken(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc, _ := newTestService(t, nil, vs, nil, nil)
	err := svc.VerifyEmail(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyEmail_ExpiredToken_RecordLeftInPlace(t *testing.T) {
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "tok").Return(&domain.EmailVerification{
		Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc, _ := newTestService(t, nil, vs, nil, nil)
	err := svc.VerifyEmail(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	vs.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmail_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	vs := &mockVerificationStore{}

	vs.On("Get", mock.Anything, "tok").Return(&domain.EmailVerification{
		Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@x.com",
	}, nil)
	vs.On("Consume", mock.Anything, "tok", "a@x.com").Return(nil)

	svc, _ := newTestService(t, us, vs, nil, nil)
	err := svc.VerifyEmail(context.Background(), "tok")
	require.NoError(t, err)
	vs.AssertExpectations(t)
}

// --- code generator ---

func TestNewTwoFactorCode_AlwaysSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := newTwoFactorCode()
		require.NoError(t, err)
		require.Regexp(t, regexp.MustCompile(`^[1-9]\d{5}$`), code)
	}
}
