package client

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"drinkpass/internal/store"
)

// Step es el paso vigente del intento de login.
type Step string

const (
	StepPassword Step = "password"
	StepOTP      Step = "otp"
)

// Destination clasifica a dónde aterriza el usuario tras autenticarse.
// Sin plan activo no se llega a las pantallas de suscriptor; esta regla es
// parte del contrato, no una decisión de UI.
type Destination string

const (
	DestinationHome             Destination = "home"
	DestinationPlanRegistration Destination = "plan_registration"
)

// LoginAttempt es el estado del login en dos factores. Vive desde que el
// usuario envía la contraseña hasta que verifica el código, cancela o
// vuelve atrás.
type LoginAttempt struct {
	Step         Step
	Email        string
	OTPRequestID string
}

// SessionService es el dueño del intento de login y de la bandera de
// sesión: nadie más muta Session ni LoginAttempt.
type SessionService struct {
	logger   *zap.Logger
	gw       Gateway
	state    *AppState
	fallback store.FavoriteStore

	mu      sync.Mutex
	attempt *LoginAttempt
}

func NewSessionService(logger *zap.Logger, gw Gateway, state *AppState, fallback store.FavoriteStore) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		logger:   logger,
		gw:       gw,
		state:    state,
		fallback: fallback,
	}
}

// Resume intenta reanudar una sesión guardada al arrancar la app. Falla en
// silencio: sin cookie válida el usuario simplemente queda como invitado.
func (s *SessionService) Resume(ctx context.Context) bool {
	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.state.ClearSession()
		return false
	}
	s.state.SetSession(user)
	return true
}

// SubmitPassword valida la contraseña y, si pasa, despacha el OTP en el
// mismo gesto. Cualquier fallo deja el intento en el paso de contraseña y
// no filtra ningún requestId parcial hacia una verificación posterior.
func (s *SessionService) SubmitPassword(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	s.mu.Lock()
	s.attempt = &LoginAttempt{Step: StepPassword, Email: email}
	s.mu.Unlock()

	if err := s.gw.Login(ctx, email, password); err != nil {
		s.logger.Warn("password check failed", zap.Error(err))
		return err
	}

	requestID, err := s.gw.SendOTP(ctx, email)
	if err != nil {
		s.logger.Warn("otp dispatch failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.attempt = &LoginAttempt{Step: StepOTP, Email: email, OTPRequestID: requestID}
	s.mu.Unlock()
	return nil
}

// SubmitOTP verifica el código contra el último despacho. En éxito carga el
// perfil (única fuente de verdad del plan), marca la sesión y clasifica el
// destino. En fallo el intento queda en el paso OTP con el mismo requestId,
// así el reintento se valida contra el mismo despacho.
func (s *SessionService) SubmitOTP(ctx context.Context, code string) (Destination, error) {
	s.mu.Lock()
	attempt := s.attempt
	s.mu.Unlock()
	if attempt == nil || attempt.Step != StepOTP {
		return "", ErrNoLoginAttempt
	}

	if err := s.gw.VerifyOTP(ctx, attempt.Email, strings.TrimSpace(code), attempt.OTPRequestID); err != nil {
		s.logger.Warn("otp verify failed", zap.Error(err))
		return "", err
	}

	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		// La verificación pasó pero el perfil no llegó; el intento sigue
		// vivo para que el caller decida reintentar.
		s.logger.Error("profile fetch after verify failed", zap.Error(err))
		return "", err
	}

	s.state.SetSession(user)
	s.mu.Lock()
	s.attempt = nil
	s.mu.Unlock()

	if !user.HasActivePlan() {
		s.state.SetScreen(ScreenPlanRegistration, "")
		return DestinationPlanRegistration, nil
	}
	s.state.SetScreen(ScreenHome, "")
	return DestinationHome, nil
}

// ResendOTP re-despacha el código para el email vigente y reemplaza el
// requestId guardado por el nuevo. No cambia de paso.
func (s *SessionService) ResendOTP(ctx context.Context) error {
	s.mu.Lock()
	attempt := s.attempt
	s.mu.Unlock()
	if attempt == nil || attempt.Step != StepOTP {
		return ErrNoLoginAttempt
	}

	requestID, err := s.gw.SendOTP(ctx, attempt.Email)
	if err != nil {
		s.logger.Warn("otp resend failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.attempt != nil && s.attempt.Step == StepOTP && s.attempt.Email == attempt.Email {
		s.attempt.OTPRequestID = requestID
	}
	s.mu.Unlock()
	return nil
}

// Cancel vuelve al paso de contraseña descartando el requestId.
func (s *SessionService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return
	}
	s.attempt = &LoginAttempt{Step: StepPassword, Email: s.attempt.Email}
}

// Logout destruye la sesión. El fallo de red no impide el logout local.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.gw.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", zap.Error(err))
	}
	s.state.ClearSession()
	s.mu.Lock()
	s.attempt = nil
	s.mu.Unlock()
}

// ForceExpire invalida la sesión sin tocar la red; lo usa el flujo de
// favoritos cuando el backend rechaza la credencial con 401/403.
func (s *SessionService) ForceExpire() {
	s.state.ClearSession()
	s.mu.Lock()
	s.attempt = nil
	s.mu.Unlock()
}

// Attempt devuelve una copia del intento vigente, si lo hay.
func (s *SessionService) Attempt() (LoginAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return LoginAttempt{}, false
	}
	return *s.attempt, true
}

// PendingLocalFavorites lista los favoritos guardados localmente como
// invitado. El núcleo no los migra al servidor al iniciar sesión; quedan
// expuestos para que un host lo haga cuando producto lo defina.
func (s *SessionService) PendingLocalFavorites() []string {
	if s.fallback == nil {
		return nil
	}
	ids, err := s.fallback.List()
	if err != nil {
		s.logger.Warn("fallback store read failed", zap.Error(err))
		return nil
	}
	return ids
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
