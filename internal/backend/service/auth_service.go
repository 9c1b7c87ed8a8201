package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"drinkpass/internal/backend/repository"
	"drinkpass/internal/domain"
	"drinkpass/internal/email"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrOTPNotRequested    = errors.New("otp not requested")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrRateLimited        = errors.New("rate limited")
	ErrEmailSendFailure   = errors.New("email send failed")
)

const otpTTL = 10 * time.Minute

// AuthService coordina el login en dos factores del lado del servidor:
// chequeo de contraseña y despacho/verificación del código de un solo uso,
// atado a un requestId para que el código se valide contra el despacho
// exacto que lo originó.
type AuthService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	sender  email.Sender
	limiter OTPRateLimiter
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, sender email.Sender, limiter OTPRateLimiter) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &AuthService{
		logger:  logger,
		users:   users,
		sender:  sender,
		limiter: limiter,
	}
}

// Authenticate valida email y contraseña.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// RequestOTP genera y despacha un código nuevo, reemplazando cualquier
// despacho anterior: el requestId devuelto es el único contra el que la
// verificación posterior va a pasar.
func (s *AuthService) RequestOTP(ctx context.Context, emailAddr string) (string, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return "", ErrInvalidEmail
	}

	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return "", ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	code, hash, expiresAt, err := generateOTP()
	if err != nil {
		return "", err
	}
	requestID := uuid.NewString()

	if err := s.users.UpdateOTP(ctx, user.ID, requestID, hash, expiresAt); err != nil {
		return "", err
	}

	if s.sender == nil {
		return "", ErrEmailSendFailure
	}
	if err := s.sender.SendLoginOTP(ctx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send login otp failed", zap.Error(err), zap.String("email", emailAddr))
		return "", ErrEmailSendFailure
	}

	return requestID, nil
}

// VerifyOTP comprueba código y requestId contra el despacho vigente y lo
// consume en éxito. Un requestId viejo se rechaza aunque el código sea el
// correcto.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, code, requestID string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if user.OtpCodeHash == "" || user.OtpExpiresAt == nil || user.OtpRequestID == "" {
		return domain.User{}, ErrOTPNotRequested
	}
	if strings.TrimSpace(requestID) == "" || requestID != user.OtpRequestID {
		return domain.User{}, ErrOTPInvalid
	}
	if time.Now().UTC().After(*user.OtpExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !verifyOTP(code, user.OtpCodeHash) {
		return domain.User{}, ErrOTPInvalid
	}

	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return domain.User{}, err
	}
	user.OtpRequestID = ""
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
