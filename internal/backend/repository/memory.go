package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"drinkpass/internal/domain"
)

// Implementaciones en memoria, usadas por el backend de desarrollo y los
// tests. Mismo contrato que las de Postgres, incluida la señal de fila
// inexistente via pgx.ErrNoRows.

type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = user
	if user.Email != "" {
		r.byEmail[user.Email] = user.ID
	}
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	id, ok := r.byEmail[email]
	r.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) UpdateOTP(_ context.Context, id, requestID, codeHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OtpRequestID = requestID
	user.OtpCodeHash = codeHash
	user.OtpExpiresAt = &expiresAt
	r.byID[id] = user
	return nil
}

func (r *MemoryUserRepository) ClearOTP(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OtpRequestID = ""
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	r.byID[id] = user
	return nil
}

type MemoryShopRepository struct {
	mu    sync.Mutex
	byID  map[string]domain.Shop
	order []string
}

func NewMemoryShopRepository() *MemoryShopRepository {
	return &MemoryShopRepository{byID: make(map[string]domain.Shop)}
}

func (r *MemoryShopRepository) Create(_ context.Context, shop domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[shop.ID]; !ok {
		r.order = append(r.order, shop.ID)
	}
	r.byID[shop.ID] = shop
	return nil
}

func (r *MemoryShopRepository) GetByID(_ context.Context, id string) (domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shop, ok := r.byID[id]
	if !ok {
		return domain.Shop{}, pgx.ErrNoRows
	}
	return shop, nil
}

func (r *MemoryShopRepository) List(_ context.Context) ([]domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Shop, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

type MemoryFavoriteRepository struct {
	mu    sync.Mutex
	pairs map[string]map[string]struct{} // userID -> shopIDs
}

func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{pairs: make(map[string]map[string]struct{})}
}

func (r *MemoryFavoriteRepository) Contains(_ context.Context, userID, shopID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.pairs[userID]
	if !ok {
		return false, nil
	}
	_, ok = ids[shopID]
	return ok, nil
}

func (r *MemoryFavoriteRepository) Add(_ context.Context, userID, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.pairs[userID]
	if !ok {
		ids = make(map[string]struct{})
		r.pairs[userID] = ids
	}
	ids[shopID] = struct{}{}
	return nil
}

func (r *MemoryFavoriteRepository) Remove(_ context.Context, userID, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ids, ok := r.pairs[userID]; ok {
		delete(ids, shopID)
	}
	return nil
}

func (r *MemoryFavoriteRepository) ListShopIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.pairs[userID]
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type MemoryCouponRepository struct {
	mu    sync.Mutex
	byID  map[string]domain.Coupon
	order []string
}

func NewMemoryCouponRepository() *MemoryCouponRepository {
	return &MemoryCouponRepository{byID: make(map[string]domain.Coupon)}
}

func (r *MemoryCouponRepository) Create(_ context.Context, coupon domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[coupon.ID]; !ok {
		r.order = append(r.order, coupon.ID)
	}
	r.byID[coupon.ID] = coupon
	return nil
}

func (r *MemoryCouponRepository) GetByID(_ context.Context, id string) (domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coupon, ok := r.byID[id]
	if !ok {
		return domain.Coupon{}, pgx.ErrNoRows
	}
	return coupon, nil
}

func (r *MemoryCouponRepository) ListByShop(_ context.Context, shopID, status string, publicOnly bool) ([]domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Coupon
	for _, id := range r.order {
		c := r.byID[id]
		if c.ShopID != shopID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		if publicOnly && !c.IsPublic {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type MemoryUsageRepository struct {
	mu    sync.Mutex
	items []domain.CouponUsage
}

func NewMemoryUsageRepository() *MemoryUsageRepository {
	return &MemoryUsageRepository{}
}

func (r *MemoryUsageRepository) Record(_ context.Context, usage domain.CouponUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, usage)
	return nil
}

func (r *MemoryUsageRepository) CountForDay(_ context.Context, userID, shopID string, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	y, m, d := day.Date()
	count := 0
	for _, u := range r.items {
		if u.UserID != userID || u.ShopID != shopID {
			continue
		}
		uy, um, ud := u.UsedAt.In(day.Location()).Date()
		if uy == y && um == m && ud == d {
			count++
		}
	}
	return count, nil
}
