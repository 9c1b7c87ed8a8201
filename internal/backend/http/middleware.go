package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drinkpass/internal/backend/service"
)

const (
	sessionCookieName = "dp_session"
	sessionClaimsKey  = "session_claims"
)

// SessionAuth valida la cookie de sesión. Solo una sesión en etapa
// completa (OTP verificado) habilita las operaciones autenticadas; la
// etapa de contraseña sola no alcanza.
func SessionAuth(tokens *service.SessionTokenService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(sessionCookieName)
		if err != nil || raw == "" {
			if required {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil || claims.Stage != service.StageFull {
			if required {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		c.Set(sessionClaimsKey, claims)
		c.Next()
	}
}

// CurrentUserID devuelve el usuario de la sesión completa, si la hay.
func CurrentUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(sessionClaimsKey)
	if !ok {
		return "", false
	}
	claims, ok := val.(service.SessionClaims)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
