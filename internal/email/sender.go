package email

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Sender define la interfaz para envío del código de login de un solo uso.
type Sender interface {
	SendLoginOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendLoginOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

type logSender struct {
	logger *zap.Logger
}

// NewLogSender registra el código en el log en lugar de enviarlo. Default
// del backend de desarrollo cuando no hay SMTP configurado.
func NewLogSender(logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logSender{logger: logger}
}

func (s *logSender) SendLoginOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	s.logger.Info("login otp (dev delivery)",
		zap.String("email", toEmail),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
