package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"drinkpass/internal/domain"
)

// FlowState es el estado del flujo de canje.
type FlowState string

const (
	FlowBrowsing   FlowState = "browsing"
	FlowListOpen   FlowState = "list_open"
	FlowConfirming FlowState = "confirming"
	FlowStaffShown FlowState = "staff_shown"
	FlowCompleted  FlowState = "completed"
)

// CouponService conduce el flujo de canje: apertura de lista con filtro de
// elegibilidad y chequeo de uso diario, confirmación, muestra al staff y
// canje, con las precondiciones de sesión y plan en el orden del contrato.
type CouponService struct {
	logger  *zap.Logger
	gw      Gateway
	state   *AppState
	effects Effects
	now     func() time.Time

	mu           sync.Mutex
	flow         FlowState
	shopID       string
	coupons      []domain.Coupon
	selected     *domain.Coupon
	listLoaded   bool
	usageChecked bool
	usedToday    bool
}

func NewCouponService(logger *zap.Logger, gw Gateway, state *AppState, effects Effects) *CouponService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if effects == nil {
		effects = NewNopEffects()
	}
	return &CouponService{
		logger:  logger,
		gw:      gw,
		state:   state,
		effects: effects,
		now:     time.Now,
		flow:    FlowBrowsing,
	}
}

// OpenList entra a la lista de cupones del local: carga los cupones ya
// filtrados por elegibilidad y consulta el uso del día. Ambas cargas tienen
// estado propio; ningún botón de canje debe aparecer mientras el chequeo de
// uso siga en vuelo, eso es un bug de corrección y no de cosmética.
func (s *CouponService) OpenList(ctx context.Context, shopID string) error {
	s.mu.Lock()
	s.flow = FlowListOpen
	s.shopID = shopID
	s.coupons = nil
	s.selected = nil
	s.listLoaded = false
	s.usageChecked = false
	s.usedToday = false
	s.mu.Unlock()

	coupons, err := s.gw.ListCoupons(ctx, shopID)
	if err != nil {
		return err
	}
	birthDate := s.viewerBirthDate()
	eligible := FilterEligible(coupons, birthDate, s.now())

	s.mu.Lock()
	if s.shopID != shopID || s.flow != FlowListOpen {
		// El usuario ya navegó a otro lado; la respuesta tardía se ignora.
		s.mu.Unlock()
		return nil
	}
	s.coupons = eligible
	s.listLoaded = true
	s.mu.Unlock()

	return s.refreshUsage(ctx, shopID)
}

// refreshUsage consulta el uso diario del local. Nunca se cachea más allá
// de la sesión del popup: puede cambiar desde otro dispositivo.
func (s *CouponService) refreshUsage(ctx context.Context, shopID string) error {
	if !s.state.Authenticated() {
		// Invitado: no hay hecho de uso que consultar; el canje igualmente
		// se frena antes, en la precondición de login.
		s.mu.Lock()
		if s.shopID == shopID {
			s.usageChecked = true
			s.usedToday = false
		}
		s.mu.Unlock()
		return nil
	}

	used, err := s.gw.TodayUsage(ctx, shopID)
	if err != nil {
		s.logger.Warn("daily usage check failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.shopID == shopID {
		s.usageChecked = true
		s.usedToday = used
	}
	s.mu.Unlock()
	return nil
}

// UseCoupon aplica las precondiciones en orden estricto: login antes que
// plan, siempre; después el uso diario; después la búsqueda del cupón en la
// lista cargada (nunca se confía en un id a través de cambios de local).
// Pasadas todas, transiciona a Confirming y prepara el audio: esta
// transición es el gesto de usuario que el navegador exige.
func (s *CouponService) UseCoupon(couponID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow != FlowListOpen {
		return nil
	}

	session := s.state.Session()
	if !session.Authenticated {
		return ErrLoginRequired
	}
	if session.User == nil || !session.User.HasActivePlan() {
		return ErrPlanRequired
	}
	if !s.usageChecked {
		return ErrUsageCheckInFlight
	}
	if s.usedToday {
		return ErrAlreadyUsedToday
	}

	var found *domain.Coupon
	for i := range s.coupons {
		if s.coupons[i].ID == couponID {
			found = &s.coupons[i]
			break
		}
	}
	if found == nil {
		// Id viejo de otro local u otra lista: no-op defensivo.
		s.logger.Warn("use coupon with stale id ignored", zap.String("coupon_id", couponID))
		return nil
	}

	selected := *found
	s.selected = &selected
	s.flow = FlowConfirming
	s.effects.Prime()
	return nil
}

// ShowToStaff revela la pantalla para el staff. Puro estado, sin red;
// dentro del flujo solo se sale por Confirm o Cancel.
func (s *CouponService) ShowToStaff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow != FlowConfirming {
		return
	}
	s.flow = FlowStaffShown
}

// Confirm canjea el cupón. En éxito completa el flujo, dispara el efecto de
// éxito, da por usado el local por el resto de la sesión de navegación (se
// confía en el propio éxito, sin re-consultar) y vuelve a la pantalla de
// navegación. En fallo el usuario queda en StaffShown y puede reintentar.
func (s *CouponService) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.flow != FlowStaffShown || s.selected == nil {
		s.mu.Unlock()
		return nil
	}
	couponID := s.selected.ID
	shopID := s.shopID
	s.mu.Unlock()

	if err := s.gw.RedeemCoupon(ctx, couponID, shopID); err != nil {
		s.logger.Warn("redemption failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.shopID == shopID && s.flow == FlowStaffShown {
		s.flow = FlowCompleted
		s.usedToday = true
		s.selected = nil
	}
	s.mu.Unlock()

	s.effects.PlaySuccess()
	s.state.SetScreen(ScreenShopDetail, shopID)
	return nil
}

// Cancel vuelve a la lista desde Confirming o StaffShown, con los cupones
// intactos y el hecho de uso re-consultado, nunca asumido como no usado.
func (s *CouponService) Cancel(ctx context.Context) {
	s.mu.Lock()
	if s.flow != FlowConfirming && s.flow != FlowStaffShown {
		s.mu.Unlock()
		return
	}
	s.flow = FlowListOpen
	s.selected = nil
	s.usageChecked = false
	shopID := s.shopID
	s.mu.Unlock()

	if err := s.refreshUsage(ctx, shopID); err != nil {
		s.logger.Warn("usage re-check on cancel failed", zap.Error(err))
	}
}

// Close abandona el flujo y vuelve a navegación.
func (s *CouponService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = FlowBrowsing
	s.shopID = ""
	s.coupons = nil
	s.selected = nil
	s.listLoaded = false
	s.usageChecked = false
	s.usedToday = false
}

// Flow devuelve el estado vigente del flujo.
func (s *CouponService) Flow() FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// Coupons devuelve la lista elegible cargada.
func (s *CouponService) Coupons() []domain.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// Selected devuelve el cupón en confirmación, si lo hay.
func (s *CouponService) Selected() (domain.Coupon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.Coupon{}, false
	}
	return *s.selected, true
}

// RedeemReady indica si la UI puede ofrecer el botón de canje: lista y
// chequeo de uso completos y sin canje previo hoy.
func (s *CouponService) RedeemReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLoaded && s.usageChecked && !s.usedToday
}

// UsedToday expone el hecho de uso diario vigente del popup.
func (s *CouponService) UsedToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedToday
}

func (s *CouponService) viewerBirthDate() *time.Time {
	session := s.state.Session()
	if session.User == nil {
		return nil
	}
	return session.User.BirthDate
}
