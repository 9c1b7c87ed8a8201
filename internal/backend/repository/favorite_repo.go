package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgFavoriteRepository implementa FavoriteRepository usando pgxpool.
type PgFavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewPgFavoriteRepository(pool *pgxpool.Pool) *PgFavoriteRepository {
	return &PgFavoriteRepository{pool: pool}
}

func (r *PgFavoriteRepository) Contains(ctx context.Context, userID, shopID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM favorites WHERE user_id = $1 AND shop_id = $2
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, shopID).Scan(&exists)
	return exists, err
}

func (r *PgFavoriteRepository) Add(ctx context.Context, userID, shopID string) error {
	const query = `
		INSERT INTO favorites (user_id, shop_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, shop_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, shopID)
	return err
}

func (r *PgFavoriteRepository) Remove(ctx context.Context, userID, shopID string) error {
	const query = `DELETE FROM favorites WHERE user_id = $1 AND shop_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, shopID)
	return err
}

func (r *PgFavoriteRepository) ListShopIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT shop_id FROM favorites WHERE user_id = $1 ORDER BY shop_id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
