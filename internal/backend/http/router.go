package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drinkpass/internal/backend/service"
)

// NewRouter configura el router de Gin con middlewares y las rutas del API
// que consume el núcleo cliente.
func NewRouter(
	logger *zap.Logger,
	tokens *service.SessionTokenService,
	authH *AuthHandler,
	shopH *ShopHandler,
	couponH *CouponHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	optional := SessionAuth(tokens, false)
	required := SessionAuth(tokens, true)

	auth := r.Group("/api/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/send-otp", authH.SendOTP)
	auth.POST("/verify-otp", authH.VerifyOTP)
	auth.POST("/logout", authH.Logout)

	api := r.Group("/api")
	api.GET("/user/me", required, authH.Me)
	api.GET("/shops", optional, shopH.ListShops)
	api.GET("/favorites", required, shopH.ListFavorites)
	api.POST("/favorites/:shopID", required, shopH.ToggleFavorite)
	api.GET("/coupons", optional, couponH.ListCoupons)
	api.GET("/coupons/usage", required, couponH.TodayUsage)
	api.POST("/coupons/:couponID/use", required, couponH.Redeem)

	return r
}
