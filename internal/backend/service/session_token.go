package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"drinkpass/internal/domain"
)

// Etapas de una sesión. La contraseña sola alcanza para pedir el segundo
// factor; solo la verificación del OTP eleva la sesión a completa.
const (
	StagePassword = "password"
	StageFull     = "full"
)

var (
	ErrSessionTokenInvalid = errors.New("session token invalid")
	ErrSessionTokenExpired = errors.New("session token expired")
)

// SessionTokenService firma y valida el token que viaja dentro de la
// cookie HTTP-only. El cliente nunca lo lee; solo el servidor.
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// SessionClaims identifica al usuario y la etapa alcanzada del login.
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Stage  string `json:"stage"`
	jwt.RegisteredClaims
}

func NewSessionTokenService(secret string, ttl time.Duration) *SessionTokenService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "drinkpass",
	}
}

// Issue firma un token de sesión para el usuario en la etapa dada.
func (s *SessionTokenService) Issue(user domain.User, stage string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionTokenInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Stage:  stage,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma, expiración y emisor, y devuelve los claims.
func (s *SessionTokenService) Parse(tokenString string) (SessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return SessionClaims{}, ErrSessionTokenInvalid
	}
	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionTokenExpired
		}
		return SessionClaims{}, ErrSessionTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID {
		return SessionClaims{}, ErrSessionTokenInvalid
	}
	if claims.Issuer != s.issuer {
		return SessionClaims{}, ErrSessionTokenInvalid
	}
	return claims, nil
}
