package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"drinkpass/internal/domain"
)

// PgCouponRepository implementa CouponRepository usando pgxpool.
type PgCouponRepository struct {
	pool *pgxpool.Pool
}

func NewPgCouponRepository(pool *pgxpool.Pool) *PgCouponRepository {
	return &PgCouponRepository{pool: pool}
}

func (r *PgCouponRepository) Create(ctx context.Context, coupon domain.Coupon) error {
	const query = `
		INSERT INTO coupons (id, shop_id, title, drink_type, status, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		coupon.ID,
		coupon.ShopID,
		coupon.Title,
		coupon.DrinkType,
		coupon.Status,
		coupon.IsPublic,
		coupon.CreatedAt,
	)
	return err
}

func (r *PgCouponRepository) GetByID(ctx context.Context, id string) (domain.Coupon, error) {
	const query = `
		SELECT id, shop_id, title, drink_type, status, is_public, created_at
		FROM coupons
		WHERE id = $1
	`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ShopID,
		&c.Title,
		&c.DrinkType,
		&c.Status,
		&c.IsPublic,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Coupon{}, err
	}
	return c, nil
}

func (r *PgCouponRepository) ListByShop(ctx context.Context, shopID, status string, publicOnly bool) ([]domain.Coupon, error) {
	const query = `
		SELECT id, shop_id, title, drink_type, status, is_public, created_at
		FROM coupons
		WHERE shop_id = $1
		  AND ($2 = '' OR status = $2)
		  AND (NOT $3 OR is_public)
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, shopID, status, publicOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Title, &c.DrinkType, &c.Status, &c.IsPublic, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
