package client

import (
	"testing"
	"time"

	"drinkpass/internal/domain"
)

func sampleCoupons() []domain.Coupon {
	return []domain.Coupon{
		{ID: "c1", DrinkType: domain.DrinkTypeAlcohol},
		{ID: "c2", DrinkType: domain.DrinkTypeSoftDrink},
		{ID: "c3", DrinkType: domain.DrinkTypeAlcohol},
		{ID: "c4", DrinkType: "juice"},
	}
}

func TestFilterEligibleUnderage(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	// Cumple 20 mañana: hoy sigue teniendo 19.
	birth := time.Date(2005, 6, 16, 0, 0, 0, 0, time.UTC)

	got := FilterEligible(sampleCoupons(), &birth, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 coupons, got %d", len(got))
	}
	if got[0].ID != "c2" || got[1].ID != "c4" {
		t.Fatalf("expected non-alcohol coupons in order, got %v", got)
	}
}

func TestFilterEligibleBirthdayToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 30, 0, 0, time.UTC)
	// Cumple 20 exactamente hoy: el alcohol entra.
	birth := time.Date(2005, 6, 15, 0, 0, 0, 0, time.UTC)

	got := FilterEligible(sampleCoupons(), &birth, now)
	if len(got) != 4 {
		t.Fatalf("expected all coupons, got %d", len(got))
	}
}

func TestFilterEligibleUnknownBirthDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	got := FilterEligible(sampleCoupons(), nil, now)
	if len(got) != 4 {
		t.Fatalf("expected all coupons with unknown age, got %d", len(got))
	}
}

func TestAgeAt(t *testing.T) {
	cases := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{
			name:  "birthday not yet this year",
			birth: time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC),
			now:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			want:  24,
		},
		{
			name:  "birthday already passed",
			birth: time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
			now:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			want:  25,
		},
		{
			name:  "birthday today",
			birth: time.Date(2005, 6, 15, 23, 0, 0, 0, time.UTC),
			now:   time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC),
			want:  20,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AgeAt(tc.birth, tc.now); got != tc.want {
				t.Fatalf("expected age %d, got %d", tc.want, got)
			}
		})
	}
}
