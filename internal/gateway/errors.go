package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError es un fallo HTTP del backend con el mensaje más específico que
// el cuerpo permitió extraer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

// errorBody cubre las formas conocidas del cuerpo de error. El campo error
// puede ser un string plano o un objeto anidado con message, así que se
// decodifica en dos pasadas.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type nestedError struct {
	Message string `json:"message"`
}

// newAPIError extrae el mensaje con prioridad error.message > message >
// error, y cae a un genérico con el status si nada aplica.
func newAPIError(status int, raw []byte) *APIError {
	msg := extractMessage(raw)
	if msg == "" {
		msg = fmt.Sprintf("request failed (status %d)", status)
	}
	return &APIError{Status: status, Message: msg}
}

func extractMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Error) > 0 {
		var nested nestedError
		if err := json.Unmarshal(body.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Error) > 0 {
		var plain string
		if err := json.Unmarshal(body.Error, &plain); err == nil {
			return plain
		}
	}
	return ""
}

// IsAuthError reconoce un rechazo de credencial (401/403), que el núcleo
// trata como expiración de sesión.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// StatusOf devuelve el status HTTP del error, o 0 si no es un APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 0
	}
	return apiErr.Status
}
