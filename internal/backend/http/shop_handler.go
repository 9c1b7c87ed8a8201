package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drinkpass/internal/backend/service"
)

// ShopHandler mantiene dependencias para endpoints de locales y favoritos.
type ShopHandler struct {
	logger     *zap.Logger
	couponServ *service.CouponService
}

func NewShopHandler(logger *zap.Logger, couponServ *service.CouponService) *ShopHandler {
	return &ShopHandler{logger: logger, couponServ: couponServ}
}

// ListShops maneja GET /api/shops. Con sesión completa marca favoritos.
func (h *ShopHandler) ListShops(c *gin.Context) {
	userID, _ := CurrentUserID(c)
	shops, err := h.couponServ.ListShops(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list shops failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list shops"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

// ToggleFavorite maneja POST /api/favorites/:shopID.
func (h *ShopHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	shopID := c.Param("shopID")

	isFavorite, err := h.couponServ.ToggleFavorite(c.Request.Context(), userID, shopID)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "shop not found"})
			return
		}
		h.logger.Error("toggle favorite failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite})
}

// ListFavorites maneja GET /api/favorites: el conjunto completo para el
// resync del cliente.
func (h *ShopHandler) ListFavorites(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	shops, err := h.couponServ.ListFavoriteShops(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list favorites failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}
