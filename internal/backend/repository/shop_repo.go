package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"drinkpass/internal/domain"
)

// PgShopRepository implementa ShopRepository usando pgxpool. La ventana de
// canje viaja como JSONB para no fijar su forma en columnas.
type PgShopRepository struct {
	pool *pgxpool.Pool
}

func NewPgShopRepository(pool *pgxpool.Pool) *PgShopRepository {
	return &PgShopRepository{pool: pool}
}

func (r *PgShopRepository) Create(ctx context.Context, shop domain.Shop) error {
	const query = `
		INSERT INTO shops (id, name, area, genre, address, usage_window)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var window []byte
	if shop.UsageWindow != nil {
		raw, err := json.Marshal(shop.UsageWindow)
		if err != nil {
			return err
		}
		window = raw
	}
	_, err := r.pool.Exec(ctx, query,
		shop.ID,
		shop.Name,
		shop.Area,
		shop.Genre,
		shop.Address,
		window,
	)
	return err
}

func (r *PgShopRepository) GetByID(ctx context.Context, id string) (domain.Shop, error) {
	const query = `
		SELECT id, name, area, genre, address, usage_window
		FROM shops
		WHERE id = $1
	`
	var (
		s      domain.Shop
		window []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.Area,
		&s.Genre,
		&s.Address,
		&window,
	)
	if err != nil {
		return domain.Shop{}, err
	}
	if len(window) > 0 {
		var w domain.UsageWindow
		if err := json.Unmarshal(window, &w); err == nil {
			s.UsageWindow = &w
		}
	}
	return s, nil
}

func (r *PgShopRepository) List(ctx context.Context) ([]domain.Shop, error) {
	const query = `
		SELECT id, name, area, genre, address, usage_window
		FROM shops
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Shop
	for rows.Next() {
		var (
			s      domain.Shop
			window []byte
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Area, &s.Genre, &s.Address, &window); err != nil {
			return nil, err
		}
		if len(window) > 0 {
			var w domain.UsageWindow
			if err := json.Unmarshal(window, &w); err == nil {
				s.UsageWindow = &w
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
