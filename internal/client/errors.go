package client

import (
	"errors"

	"drinkpass/internal/gateway"
)

// Señales de regla de negocio. Son distintas entre sí porque su remedio
// difiere: iniciar sesión, registrar un plan, o simplemente esperar.
var (
	ErrLoginRequired      = errors.New("login required")
	ErrPlanRequired       = errors.New("plan required")
	ErrAlreadyUsedToday   = errors.New("coupon already used at this shop today")
	ErrUsageCheckInFlight = errors.New("daily usage check still in flight")
	ErrSessionExpired     = errors.New("session expired, please log in again")
	ErrNoLoginAttempt     = errors.New("no login attempt in progress")
)

const genericFailureMessage = "something went wrong, please try again"

// UserMessage convierte cualquier fallo ya clasificado en el texto que la
// vista puede mostrar: los rechazos del backend van verbatim, el resto cae
// a un genérico. Ningún entry point deja escapar errores sin clasificar.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrLoginRequired),
		errors.Is(err, ErrPlanRequired),
		errors.Is(err, ErrAlreadyUsedToday),
		errors.Is(err, ErrSessionExpired):
		return err.Error()
	}
	return genericFailureMessage
}
