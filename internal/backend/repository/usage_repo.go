package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"drinkpass/internal/domain"
)

// PgUsageRepository implementa UsageRepository usando pgxpool.
type PgUsageRepository struct {
	pool *pgxpool.Pool
}

func NewPgUsageRepository(pool *pgxpool.Pool) *PgUsageRepository {
	return &PgUsageRepository{pool: pool}
}

func (r *PgUsageRepository) Record(ctx context.Context, usage domain.CouponUsage) error {
	const query = `
		INSERT INTO coupon_usages (id, user_id, coupon_id, shop_id, used_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		usage.ID,
		usage.UserID,
		usage.CouponID,
		usage.ShopID,
		usage.UsedAt,
	)
	return err
}

func (r *PgUsageRepository) CountForDay(ctx context.Context, userID, shopID string, day time.Time) (int, error) {
	// El corte de día se evalúa en la zona horaria del proceso, igual que
	// en la implementación en memoria.
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	const query = `
		SELECT COUNT(*)
		FROM coupon_usages
		WHERE user_id = $1 AND shop_id = $2 AND used_at >= $3 AND used_at < $4
	`
	var count int
	err := r.pool.QueryRow(ctx, query, userID, shopID, start, end).Scan(&count)
	return count, err
}
