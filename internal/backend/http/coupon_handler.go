package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drinkpass/internal/backend/repository"
	"drinkpass/internal/backend/service"
)

// CouponHandler mantiene dependencias para endpoints de cupones y canje.
type CouponHandler struct {
	logger     *zap.Logger
	couponServ *service.CouponService
	users      repository.UserRepository
}

func NewCouponHandler(logger *zap.Logger, couponServ *service.CouponService, users repository.UserRepository) *CouponHandler {
	return &CouponHandler{logger: logger, couponServ: couponServ, users: users}
}

// ListCoupons maneja GET /api/coupons?shopId=&status=&isPublic=. Público:
// la lista se puede mirar sin sesión; el canje no.
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	shopID := c.Query("shopId")
	if shopID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shopId is required"})
		return
	}
	status := c.Query("status")
	publicOnly := c.Query("isPublic") == "true"

	coupons, err := h.couponServ.ListCoupons(c.Request.Context(), shopID, status, publicOnly)
	if err != nil {
		h.logger.Error("list coupons failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list coupons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// TodayUsage maneja GET /api/coupons/usage?shopId=: el hecho de uso diario
// por local, consultado en cada apertura de lista.
func (h *CouponHandler) TodayUsage(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	shopID := c.Query("shopId")
	if shopID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shopId is required"})
		return
	}

	used, err := h.couponServ.UsedToday(c.Request.Context(), userID, shopID)
	if err != nil {
		h.logger.Error("usage check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usedToday": used})
}

// Redeem maneja POST /api/coupons/:couponID/use. Exige plan activo además
// de sesión completa; los rechazos de negocio viajan con el mensaje en
// error.message.
func (h *CouponHandler) Redeem(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req struct {
		ShopID string `json:"shopId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid redeem request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("load user for redeem failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not redeem"})
		return
	}
	if !user.HasActivePlan() {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "an active plan is required to use coupons"}})
		return
	}

	couponID := c.Param("couponID")
	if err := h.couponServ.Redeem(c.Request.Context(), userID, couponID, req.ShopID); err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound), errors.Is(err, service.ErrShopNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
		case errors.Is(err, service.ErrAlreadyUsedToday), errors.Is(err, service.ErrOutsideUsageWindow):
			c.JSON(http.StatusConflict, gin.H{"error": gin.H{"message": err.Error()}})
		case errors.Is(err, service.ErrCouponUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("redeem failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not redeem"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "redeemed"})
}
