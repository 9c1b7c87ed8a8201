package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"drinkpass/internal/backend/repository"
	"drinkpass/internal/domain"
)

type captureSender struct {
	toEmail string
	code    string
	sends   int
	err     error
}

func (s *captureSender) SendLoginOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	s.sends++
	if s.err != nil {
		return s.err
	}
	s.toEmail = toEmail
	s.code = code
	return nil
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func seedUser(t *testing.T, users *repository.MemoryUserRepository, email, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := domain.User{
		ID:           "u1",
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthenticate(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	svc := NewAuthService(zap.NewNop(), users, &captureSender{}, allowAllLimiter{})

	if _, err := svc.Authenticate(context.Background(), " User@Example.com ", "secret123"); err != nil {
		t.Fatalf("expected success with normalized email, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like a bad credential, got %v", err)
	}
}

func TestRequestOTPStoresDispatch(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{}
	svc := NewAuthService(zap.NewNop(), users, sender, allowAllLimiter{})

	requestID, err := svc.RequestOTP(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if requestID == "" {
		t.Fatalf("expected a request id")
	}
	if sender.sends != 1 || sender.toEmail != "user@example.com" {
		t.Fatalf("expected one email to the user, got %d to %q", sender.sends, sender.toEmail)
	}
	if !isValidOTPCode(sender.code) {
		t.Fatalf("expected a six digit code, got %q", sender.code)
	}

	stored, err := users.GetByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.OtpRequestID != requestID {
		t.Fatalf("stored request id must match the returned one")
	}
	if stored.OtpCodeHash == "" || stored.OtpCodeHash == sender.code {
		t.Fatalf("the code must be stored hashed, never plain")
	}
	if stored.OtpExpiresAt == nil || !stored.OtpExpiresAt.After(time.Now().UTC()) {
		t.Fatalf("expected a future expiry")
	}
}

func TestRequestOTPUnknownUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(zap.NewNop(), users, &captureSender{}, allowAllLimiter{})

	if _, err := svc.RequestOTP(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequestOTPRateLimited(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{}
	svc := NewAuthService(zap.NewNop(), users, sender, denyAllLimiter{})

	if _, err := svc.RequestOTP(context.Background(), "user@example.com"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if sender.sends != 0 {
		t.Fatalf("no email may go out when rate limited")
	}
}

func TestRequestOTPEmailFailure(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{err: errors.New("smtp down")}
	svc := NewAuthService(zap.NewNop(), users, sender, allowAllLimiter{})

	if _, err := svc.RequestOTP(context.Background(), "user@example.com"); !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}
}

func TestVerifyOTPSuccessConsumesDispatch(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{}
	svc := NewAuthService(zap.NewNop(), users, sender, allowAllLimiter{})

	requestID, err := svc.RequestOTP(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	user, err := svc.VerifyOTP(context.Background(), "user@example.com", sender.code, requestID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("expected the user back, got %q", user.Email)
	}

	// El despacho se consume: el mismo código no vale dos veces.
	if _, err := svc.VerifyOTP(context.Background(), "user@example.com", sender.code, requestID); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested on replay, got %v", err)
	}
}

func TestVerifyOTPStaleRequestID(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{}
	svc := NewAuthService(zap.NewNop(), users, sender, allowAllLimiter{})

	staleID, err := svc.RequestOTP(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	staleCode := sender.code

	// Un reenvío reemplaza el despacho anterior por completo.
	if _, err := svc.RequestOTP(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}

	if _, err := svc.VerifyOTP(context.Background(), "user@example.com", staleCode, staleID); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("stale dispatch must be rejected, got %v", err)
	}
	if _, err := svc.VerifyOTP(context.Background(), "user@example.com", sender.code, ""); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("blank request id must be rejected, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{}
	svc := NewAuthService(zap.NewNop(), users, sender, allowAllLimiter{})

	requestID, err := svc.RequestOTP(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	stored, err := users.GetByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	past := time.Now().UTC().Add(-time.Minute)
	if err := users.UpdateOTP(context.Background(), stored.ID, stored.OtpRequestID, stored.OtpCodeHash, past); err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}

	if _, err := svc.VerifyOTP(context.Background(), "user@example.com", sender.code, requestID); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	seedUser(t, users, "user@example.com", "secret123")
	sender := &captureSender{}
	svc := NewAuthService(zap.NewNop(), users, sender, allowAllLimiter{})

	requestID, err := svc.RequestOTP(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	wrong := "000000"
	if wrong == sender.code {
		wrong = "000001"
	}
	if _, err := svc.VerifyOTP(context.Background(), "user@example.com", wrong, requestID); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	if _, err := svc.VerifyOTP(context.Background(), "user@example.com", "12ab56", requestID); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("malformed code must be rejected before any lookup, got %v", err)
	}
}

func TestOTPRateLimiterWindow(t *testing.T) {
	limiter := NewOTPRateLimiter(time.Hour, 2)
	if !limiter.Allow("user@example.com") || !limiter.Allow("user@example.com") {
		t.Fatalf("first two requests must pass")
	}
	if limiter.Allow("user@example.com") {
		t.Fatalf("third request inside the window must be denied")
	}
	if !limiter.Allow("other@example.com") {
		t.Fatalf("keys are independent")
	}
}
