package domain

import "time"

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	PasswordHash string     `json:"-"`
	Plan         *Plan      `json:"plan"`
	CreatedAt    time.Time  `json:"created_at"`

	// Estado del despacho de OTP vigente, solo del lado del servidor.
	OtpRequestID string     `json:"-"`
	OtpCodeHash  string     `json:"-"`
	OtpExpiresAt *time.Time `json:"-"`
}

// Plan representa la suscripción activa del usuario. Un puntero nil
// significa "sin plan activo", que no es lo mismo que "desconocido".
type Plan struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	RenewsAt  *time.Time `json:"renews_at,omitempty"`
	StartedAt time.Time  `json:"started_at"`
}

// HasActivePlan indica si el usuario puede acceder a pantallas de suscriptor.
func (u User) HasActivePlan() bool {
	return u.Plan != nil && u.Plan.Status == PlanStatusActive
}

const PlanStatusActive = "active"
