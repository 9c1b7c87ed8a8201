package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"drinkpass/internal/domain"
	"drinkpass/internal/gateway"
)

// mockGateway implementa Gateway para tests y registra el orden de las
// llamadas de red.
type mockGateway struct {
	mu    sync.Mutex
	calls []string

	loginErr error

	otpRequestIDs []string
	sendOTPErr    error

	verifiedEmail     string
	verifiedCode      string
	verifiedRequestID string
	verifyErr         error

	currentUser    domain.User
	currentUserErr error

	toggleResult bool
	toggleErr    error

	favorites  []domain.Shop
	listFavErr error

	shops []domain.Shop

	coupons        []domain.Coupon
	listCouponsErr error

	usedToday bool
	usageErr  error

	redeemErr error
	// El mock marca el uso del día al canjear, como haría el backend.
	markUsedOnRedeem bool
}

func (m *mockGateway) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockGateway) callCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *mockGateway) Login(_ context.Context, _, _ string) error {
	m.record("login")
	return m.loginErr
}

func (m *mockGateway) SendOTP(_ context.Context, _ string) (string, error) {
	m.record("send_otp")
	if m.sendOTPErr != nil {
		return "", m.sendOTPErr
	}
	if len(m.otpRequestIDs) == 0 {
		return "req-default", nil
	}
	id := m.otpRequestIDs[0]
	if len(m.otpRequestIDs) > 1 {
		m.otpRequestIDs = m.otpRequestIDs[1:]
	}
	return id, nil
}

func (m *mockGateway) VerifyOTP(_ context.Context, email, code, requestID string) error {
	m.record("verify_otp")
	m.verifiedEmail = email
	m.verifiedCode = code
	m.verifiedRequestID = requestID
	return m.verifyErr
}

func (m *mockGateway) CurrentUser(_ context.Context) (domain.User, error) {
	m.record("current_user")
	if m.currentUserErr != nil {
		return domain.User{}, m.currentUserErr
	}
	return m.currentUser, nil
}

func (m *mockGateway) Logout(_ context.Context) error {
	m.record("logout")
	return nil
}

func (m *mockGateway) ToggleFavorite(_ context.Context, _ string) (bool, error) {
	m.record("toggle_favorite")
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	return m.toggleResult, nil
}

func (m *mockGateway) ListFavorites(_ context.Context) ([]domain.Shop, error) {
	m.record("list_favorites")
	if m.listFavErr != nil {
		return nil, m.listFavErr
	}
	return m.favorites, nil
}

func (m *mockGateway) ListShops(_ context.Context) ([]domain.Shop, error) {
	m.record("list_shops")
	return m.shops, nil
}

func (m *mockGateway) ListCoupons(_ context.Context, _ string) ([]domain.Coupon, error) {
	m.record("list_coupons")
	if m.listCouponsErr != nil {
		return nil, m.listCouponsErr
	}
	return m.coupons, nil
}

func (m *mockGateway) TodayUsage(_ context.Context, _ string) (bool, error) {
	m.record("today_usage")
	if m.usageErr != nil {
		return false, m.usageErr
	}
	return m.usedToday, nil
}

func (m *mockGateway) RedeemCoupon(_ context.Context, _, _ string) error {
	m.record("redeem")
	if m.redeemErr != nil {
		return m.redeemErr
	}
	if m.markUsedOnRedeem {
		m.usedToday = true
	}
	return nil
}

func authErr(status int) error {
	return &gateway.APIError{Status: status, Message: fmt.Sprintf("status %d", status)}
}

var errNetwork = errors.New("connection reset")
