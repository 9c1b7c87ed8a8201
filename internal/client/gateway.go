package client

import (
	"context"

	"drinkpass/internal/domain"
)

// Gateway es el contrato del núcleo con la puerta de sesión remota.
// *gateway.Client lo implementa; los tests usan mocks.
type Gateway interface {
	Login(ctx context.Context, email, password string) error
	SendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, code, requestID string) error
	CurrentUser(ctx context.Context) (domain.User, error)
	Logout(ctx context.Context) error
	ToggleFavorite(ctx context.Context, shopID string) (bool, error)
	ListFavorites(ctx context.Context) ([]domain.Shop, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
	ListCoupons(ctx context.Context, shopID string) ([]domain.Coupon, error)
	TodayUsage(ctx context.Context, shopID string) (bool, error)
	RedeemCoupon(ctx context.Context, couponID, shopID string) error
}
