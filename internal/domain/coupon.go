package domain

import "time"

// Tipos de bebida de un cupón. El filtro de elegibilidad solo distingue
// alcohol del resto.
const (
	DrinkTypeAlcohol   = "alcohol"
	DrinkTypeSoftDrink = "soft_drink"
)

const CouponStatusApproved = "approved"

type Coupon struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shop_id"`
	Title     string    `json:"title"`
	DrinkType string    `json:"drink_type"`
	Status    string    `json:"status"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// CouponUsage registra un canje: a lo sumo uno por usuario, local y día.
type CouponUsage struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	CouponID string    `json:"coupon_id"`
	ShopID   string    `json:"shop_id"`
	UsedAt   time.Time `json:"used_at"`
}
