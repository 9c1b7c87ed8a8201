package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"drinkpass/internal/backend/repository"
	"drinkpass/internal/domain"
)

type couponFixture struct {
	svc     *CouponService
	shops   *repository.MemoryShopRepository
	coupons *repository.MemoryCouponRepository
	usage   *repository.MemoryUsageRepository
}

func newBackendCouponFixture(t *testing.T) *couponFixture {
	t.Helper()
	shops := repository.NewMemoryShopRepository()
	coupons := repository.NewMemoryCouponRepository()
	favorites := repository.NewMemoryFavoriteRepository()
	usage := repository.NewMemoryUsageRepository()
	svc := NewCouponService(zap.NewNop(), shops, coupons, favorites, usage)

	ctx := context.Background()
	if err := shops.Create(ctx, domain.Shop{ID: "s1", Name: "Golden Gai Stand"}); err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	if err := coupons.Create(ctx, domain.Coupon{
		ID:        "c1",
		ShopID:    "s1",
		Title:     "Highball",
		DrinkType: domain.DrinkTypeAlcohol,
		Status:    domain.CouponStatusApproved,
		IsPublic:  true,
	}); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
	return &couponFixture{svc: svc, shops: shops, coupons: coupons, usage: usage}
}

func TestRedeemHappyPath(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	used, err := f.svc.UsedToday(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("used today: %v", err)
	}
	if !used {
		t.Fatalf("expected the redemption recorded for today")
	}
}

func TestRedeemSecondTimeSameDay(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); !errors.Is(err, ErrAlreadyUsedToday) {
		t.Fatalf("expected ErrAlreadyUsedToday, got %v", err)
	}
	// Otro usuario en el mismo local no está afectado.
	if err := f.svc.Redeem(ctx, "u2", "c1", "s1"); err != nil {
		t.Fatalf("other user must still redeem: %v", err)
	}
}

func TestRedeemNextDayAllowedAgain(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return day1 }
	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); err != nil {
		t.Fatalf("day one: %v", err)
	}

	f.svc.now = func() time.Time { return day1.Add(24 * time.Hour) }
	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); err != nil {
		t.Fatalf("a new day resets the gate: %v", err)
	}
}

func TestRedeemUnknownOrMismatchedCoupon(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	if err := f.svc.Redeem(ctx, "u1", "ghost", "s1"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
	// Cupón real pero de otro local: misma señal que inexistente.
	if err := f.svc.Redeem(ctx, "u1", "c1", "s2"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound on shop mismatch, got %v", err)
	}
}

func TestRedeemUnavailableCoupon(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	if err := f.coupons.Create(ctx, domain.Coupon{
		ID: "c2", ShopID: "s1", Status: "pending", IsPublic: true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.svc.Redeem(ctx, "u1", "c2", "s1"); !errors.Is(err, ErrCouponUnavailable) {
		t.Fatalf("expected ErrCouponUnavailable for unapproved, got %v", err)
	}

	if err := f.coupons.Create(ctx, domain.Coupon{
		ID: "c3", ShopID: "s1", Status: domain.CouponStatusApproved, IsPublic: false,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.svc.Redeem(ctx, "u1", "c3", "s1"); !errors.Is(err, ErrCouponUnavailable) {
		t.Fatalf("expected ErrCouponUnavailable for private, got %v", err)
	}
}

func TestRedeemOutsideUsageWindow(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	window := &domain.UsageWindow{
		Days:      []int{1, 2, 3, 4, 5},
		StartTime: "17:00",
		EndTime:   "23:30",
	}
	if err := f.shops.Create(ctx, domain.Shop{ID: "s1", Name: "Golden Gai Stand", UsageWindow: window}); err != nil {
		t.Fatalf("reseed shop: %v", err)
	}

	// Lunes a las 12:00: día correcto, hora fuera de ventana.
	f.svc.now = func() time.Time { return time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC) }
	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); !errors.Is(err, ErrOutsideUsageWindow) {
		t.Fatalf("expected ErrOutsideUsageWindow, got %v", err)
	}

	// Domingo a las 18:00: hora correcta, día fuera de ventana.
	f.svc.now = func() time.Time { return time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC) }
	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); !errors.Is(err, ErrOutsideUsageWindow) {
		t.Fatalf("expected ErrOutsideUsageWindow on wrong day, got %v", err)
	}

	// Lunes a las 18:00: dentro de la ventana.
	f.svc.now = func() time.Time { return time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC) }
	if err := f.svc.Redeem(ctx, "u1", "c1", "s1"); err != nil {
		t.Fatalf("expected success inside the window, got %v", err)
	}
}

func TestWindowAllowsCrossMidnight(t *testing.T) {
	w := &domain.UsageWindow{StartTime: "22:00", EndTime: "02:00"}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before opening", time.Date(2025, 6, 16, 21, 0, 0, 0, time.UTC), false},
		{"late evening", time.Date(2025, 6, 16, 23, 30, 0, 0, time.UTC), true},
		{"past midnight", time.Date(2025, 6, 17, 1, 0, 0, 0, time.UTC), true},
		{"after closing", time.Date(2025, 6, 17, 3, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := windowAllows(w, tc.now); got != tc.want {
				t.Fatalf("expected %v at %s", tc.want, tc.now)
			}
		})
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	f := newBackendCouponFixture(t)
	ctx := context.Background()

	on, err := f.svc.ToggleFavorite(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on {
		t.Fatalf("first toggle must add")
	}

	shops, err := f.svc.ListShops(ctx, "u1")
	if err != nil {
		t.Fatalf("list shops: %v", err)
	}
	if len(shops) != 1 || !shops[0].IsFavorite {
		t.Fatalf("expected the feed flagged for the user, got %v", shops)
	}

	favs, err := f.svc.ListFavoriteShops(ctx, "u1")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favs) != 1 || favs[0].ID != "s1" {
		t.Fatalf("expected [s1], got %v", favs)
	}

	off, err := f.svc.ToggleFavorite(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off {
		t.Fatalf("second toggle must remove")
	}

	if _, err := f.svc.ToggleFavorite(ctx, "u1", "ghost"); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}
