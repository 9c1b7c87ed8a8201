package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"drinkpass/internal/backend/repository"
	"drinkpass/internal/domain"
)

var (
	ErrShopNotFound       = errors.New("shop not found")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponUnavailable  = errors.New("coupon is not available")
	ErrAlreadyUsedToday   = errors.New("a coupon was already used at this shop today")
	ErrOutsideUsageWindow = errors.New("coupon cannot be used at this time")
)

// CouponService es la lógica de locales, favoritos y canjes del backend:
// a lo sumo un canje por usuario, local y día, dentro de la ventana del
// local.
type CouponService struct {
	logger    *zap.Logger
	shops     repository.ShopRepository
	coupons   repository.CouponRepository
	favorites repository.FavoriteRepository
	usage     repository.UsageRepository
	now       func() time.Time
}

func NewCouponService(
	logger *zap.Logger,
	shops repository.ShopRepository,
	coupons repository.CouponRepository,
	favorites repository.FavoriteRepository,
	usage repository.UsageRepository,
) *CouponService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CouponService{
		logger:    logger,
		shops:     shops,
		coupons:   coupons,
		favorites: favorites,
		usage:     usage,
		now:       time.Now,
	}
}

// ListShops devuelve el feed; con userID marca las banderas de favorito.
func (s *CouponService) ListShops(ctx context.Context, userID string) ([]domain.Shop, error) {
	shops, err := s.shops.List(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return shops, nil
	}
	favIDs, err := s.favorites.ListShopIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	favSet := make(map[string]struct{}, len(favIDs))
	for _, id := range favIDs {
		favSet[id] = struct{}{}
	}
	for i := range shops {
		_, shops[i].IsFavorite = favSet[shops[i].ID]
	}
	return shops, nil
}

// ToggleFavorite alterna la relación y devuelve el estado resultante.
func (s *CouponService) ToggleFavorite(ctx context.Context, userID, shopID string) (bool, error) {
	if _, err := s.shops.GetByID(ctx, shopID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrShopNotFound
		}
		return false, err
	}
	has, err := s.favorites.Contains(ctx, userID, shopID)
	if err != nil {
		return false, err
	}
	if has {
		if err := s.favorites.Remove(ctx, userID, shopID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.favorites.Add(ctx, userID, shopID); err != nil {
		return false, err
	}
	return true, nil
}

// ListFavoriteShops devuelve los locales favoritos completos del usuario.
func (s *CouponService) ListFavoriteShops(ctx context.Context, userID string) ([]domain.Shop, error) {
	ids, err := s.favorites.ListShopIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Shop, 0, len(ids))
	for _, id := range ids {
		shop, err := s.shops.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		shop.IsFavorite = true
		out = append(out, shop)
	}
	return out, nil
}

// ListCoupons devuelve los cupones del local con los filtros pedidos.
func (s *CouponService) ListCoupons(ctx context.Context, shopID, status string, publicOnly bool) ([]domain.Coupon, error) {
	return s.coupons.ListByShop(ctx, shopID, status, publicOnly)
}

// UsedToday responde si el usuario ya canjeó en el local hoy.
func (s *CouponService) UsedToday(ctx context.Context, userID, shopID string) (bool, error) {
	count, err := s.usage.CountForDay(ctx, userID, shopID, s.now())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Redeem canjea el cupón: valida existencia y disponibilidad, la ventana
// del local y el tope diario, y registra el uso.
func (s *CouponService) Redeem(ctx context.Context, userID, couponID, shopID string) error {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCouponNotFound
		}
		return err
	}
	if coupon.ShopID != shopID {
		return ErrCouponNotFound
	}
	if coupon.Status != domain.CouponStatusApproved || !coupon.IsPublic {
		return ErrCouponUnavailable
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrShopNotFound
		}
		return err
	}
	now := s.now()
	if !windowAllows(shop.UsageWindow, now) {
		return ErrOutsideUsageWindow
	}

	count, err := s.usage.CountForDay(ctx, userID, shopID, now)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyUsedToday
	}

	usage := domain.CouponUsage{
		ID:       uuid.NewString(),
		UserID:   userID,
		CouponID: couponID,
		ShopID:   shopID,
		UsedAt:   now,
	}
	if err := s.usage.Record(ctx, usage); err != nil {
		return err
	}
	s.logger.Info("coupon redeemed",
		zap.String("user_id", userID),
		zap.String("coupon_id", couponID),
		zap.String("shop_id", shopID),
	)
	return nil
}

// windowAllows evalúa la ventana de canje del local; sin ventana todo
// horario vale.
func windowAllows(w *domain.UsageWindow, now time.Time) bool {
	if w == nil {
		return true
	}
	if len(w.Days) > 0 {
		ok := false
		for _, d := range w.Days {
			if d == int(now.Weekday()) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	start, okStart := parseClock(w.StartTime)
	end, okEnd := parseClock(w.EndTime)
	if !okStart || !okEnd {
		return true
	}
	minutes := now.Hour()*60 + now.Minute()
	if start <= end {
		return minutes >= start && minutes < end
	}
	// Ventana que cruza medianoche, lo normal en bares.
	return minutes >= start || minutes < end
}

func parseClock(v string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
