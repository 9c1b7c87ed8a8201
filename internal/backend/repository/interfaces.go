package repository

import (
	"context"
	"time"

	"drinkpass/internal/domain"
)

// Los repositorios devuelven pgx.ErrNoRows cuando la fila no existe,
// también en las implementaciones en memoria.

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateOTP(ctx context.Context, id, requestID, codeHash string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id string) error
}

// ShopRepository define el contrato de persistencia para locales.
type ShopRepository interface {
	Create(ctx context.Context, shop domain.Shop) error
	GetByID(ctx context.Context, id string) (domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
}

// FavoriteRepository guarda la relación (usuario, local) de favoritos.
type FavoriteRepository interface {
	Contains(ctx context.Context, userID, shopID string) (bool, error)
	Add(ctx context.Context, userID, shopID string) error
	Remove(ctx context.Context, userID, shopID string) error
	ListShopIDs(ctx context.Context, userID string) ([]string, error)
}

// CouponRepository define el contrato de persistencia para cupones.
type CouponRepository interface {
	Create(ctx context.Context, coupon domain.Coupon) error
	GetByID(ctx context.Context, id string) (domain.Coupon, error)
	ListByShop(ctx context.Context, shopID, status string, publicOnly bool) ([]domain.Coupon, error)
}

// UsageRepository registra canjes y responde el hecho de uso diario.
type UsageRepository interface {
	Record(ctx context.Context, usage domain.CouponUsage) error
	CountForDay(ctx context.Context, userID, shopID string, day time.Time) (int, error)
}
