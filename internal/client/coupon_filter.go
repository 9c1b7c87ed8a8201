package client

import (
	"time"

	"drinkpass/internal/domain"
)

// Edad mínima legal para bebidas alcohólicas.
const legalDrinkingAge = 20

// FilterEligible excluye los cupones de alcohol cuando el espectador tiene
// menos de 20 años. Con fecha de nacimiento desconocida no se filtra por
// tipo de bebida: edad desconocida no se trata como "asumir menor". El
// orden y el resto de los campos pasan sin cambios. Este filtro se aplica
// idéntico en todo lugar donde se muestren cupones; existe por requisito
// legal, no como decoración.
func FilterEligible(coupons []domain.Coupon, birthDate *time.Time, now time.Time) []domain.Coupon {
	if birthDate == nil {
		return coupons
	}
	if AgeAt(*birthDate, now) >= legalDrinkingAge {
		return coupons
	}
	out := make([]domain.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.DrinkType == domain.DrinkTypeAlcohol {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AgeAt calcula la edad en años cumplidos a la fecha dada, contando si el
// cumpleaños de este año ya pasó; restar años a secas no alcanza.
func AgeAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if years < 0 {
		return 0
	}
	birthdayThisYear := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(birthdayThisYear) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
