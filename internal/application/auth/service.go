package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/go-watchlist-api/internal/domain"
	jwtinfra "github.com/go-watchlist-api/internal/infrastructure/jwt"
	"github.com/go-watchlist-api/internal/pkg/id"
	"github.com/go-watchlist-api/internal/pkg/password"
	pkgtoken "github.com/go-watchlist-api/internal/pkg/token"
)

// Lifetimes of the single-use secrets. Both are fixed by design and
// intentionally not configurable.
const (
	emailTokenTTL    = 24 * time.Hour
	twoFactorCodeTTL = 10 * time.Minute
)

// Service implements the authentication flows: registration with mandatory
// email verification and the two-step login (password check, then a one-time
// code gated by a temp token).
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (tempToken string, err error)
	VerifyTwoFactor(ctx context.Context, code, tempToken string) (accessToken string, err error)
	VerifyEmail(ctx context.Context, token string) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.EmailVerification) error
	Get(ctx context.Context, token string) (*domain.EmailVerification, error)
	Consume(ctx context.Context, token, userEmail string) error
}

type twoFactorStore interface {
	Put(ctx context.Context, c *domain.TwoFactorCode) error
	Consume(ctx context.Context, userID, code string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenProvider interface {
	SignTemp(userID, email string) (string, error)
	SignSession(userID, email, role string, emailVerified bool) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	userRepo         userStore
	verificationRepo verificationStore
	twoFactorRepo    twoFactorStore
	mailer           mailer
	tokens           tokenProvider
	appURL           string
}

type ServiceDeps struct {
	UserRepo         userStore
	VerificationRepo verificationStore
	TwoFactorRepo    twoFactorStore
	Mailer           mailer
	Tokens           tokenProvider
	AppURL           string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:         deps.UserRepo,
		verificationRepo: deps.VerificationRepo,
		twoFactorRepo:    deps.TwoFactorRepo,
		mailer:           deps.Mailer,
		tokens:           deps.Tokens,
		appURL:           deps.AppURL,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	token, err := pkgtoken.NewVerificationToken()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:                 id.New(),
		Email:                  req.Email,
		PasswordHash:           hash,
		Role:                   domain.RoleUser,
		EmailVerified:          false,
		EmailVerificationToken: &token,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	// The conditional put in the repo makes the duplicate-email check atomic;
	// concurrent registrations with the same email yield exactly one conflict.
	if err := s.userRepo.Create(ctx, u); err != nil {
		return err
	}

	if err := s.verificationRepo.Put(ctx, &domain.EmailVerification{
		Token:     token,
		UserID:    u.UserID,
		ExpiresAt: now.Add(emailTokenTTL).Unix(),
	}); err != nil {
		return err
	}

	// Delivery is best effort: a mail failure does not roll back the user.
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", s.appURL, token)
	body := "Welcome! Confirm your email address by opening this link (valid 24 hours):\n\n" + link
	if err := s.mailer.SendEmail(u.Email, "Verify your email", body); err != nil {
		slog.Warn("failed to send verification email", "user_id", u.UserID, "err", err)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message as a wrong password so callers cannot probe for
		// registered emails.
		return "", fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		return "", fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)
	}
	if !u.EmailVerified {
		return "", fmt.Errorf("please verify your email before logging in: %w", domain.ErrUnauthorized)
	}

	code, err := newTwoFactorCode()
	if err != nil {
		return "", err
	}
	if err := s.twoFactorRepo.Put(ctx, &domain.TwoFactorCode{
		UserID:    u.UserID,
		Code:      code,
		IsUsed:    false,
		ExpiresAt: time.Now().Add(twoFactorCodeTTL).Unix(),
	}); err != nil {
		return "", err
	}

	body := "Your verification code is: " + code + "\n\nIt expires in 10 minutes. If you did not request it, ignore this email."
	if err := s.mailer.SendEmail(u.Email, "Your verification code", body); err != nil {
		slog.Warn("failed to send two-factor code", "user_id", u.UserID, "err", err)
	}

	return s.tokens.SignTemp(u.UserID, u.Email)
}

func (s *service) VerifyTwoFactor(ctx context.Context, code, tempToken string) (string, error) {
	claims, err := s.tokens.Verify(tempToken)
	if err != nil || !claims.Temp {
		return "", fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}

	if err := s.twoFactorRepo.Consume(ctx, claims.UserID(), code); err != nil {
		return "", err
	}

	// Re-read the user so the session token carries the current role and
	// verification flag, not what they were at step 1.
	u, err := s.userRepo.Get(ctx, claims.UserID())
	if err != nil {
		return "", fmt.Errorf("user no longer exists: %w", domain.ErrUnauthorized)
	}
	return s.tokens.SignSession(u.UserID, u.Email, u.Role, u.EmailVerified)
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	v, err := s.verificationRepo.Get(ctx, token)
	if err != nil {
		return err
	}
	if v.ExpiresAt < time.Now().Unix() {
		// The record is left in place; the table TTL cleans it up.
		return fmt.Errorf("verification token has expired: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, v.UserID)
	if err != nil {
		return err
	}
	return s.verificationRepo.Consume(ctx, token, u.Email)
}

// newTwoFactorCode draws a 6-digit code uniformly from [100000, 999999].
func newTwoFactorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate two-factor code: %w", err)
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}
