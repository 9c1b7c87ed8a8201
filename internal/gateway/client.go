package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"drinkpass/internal/domain"
)

// Client es la puerta de sesión hacia el backend remoto: envuelve los
// endpoints de auth, favoritos y cupones. Es stateless salvo por la cookie
// de sesión HTTP-only que vive en el jar.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient construye un cliente con cookie jar propio; la sesión viaja
// siempre en la cookie, nunca en tokens legibles por el cliente.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		logger: logger,
	}
}

// Login valida email y contraseña; el backend deja la cookie de sesión.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/login", body, nil)
}

// SendOTP despacha un código de un solo uso y devuelve el id de correlación
// que debe acompañar la verificación posterior.
func (c *Client) SendOTP(ctx context.Context, email string) (string, error) {
	var out struct {
		RequestID string `json:"requestId"`
	}
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/api/auth/send-otp", body, &out); err != nil {
		return "", err
	}
	return out.RequestID, nil
}

// VerifyOTP comprueba el código contra el despacho identificado por requestID.
func (c *Client) VerifyOTP(ctx context.Context, email, code, requestID string) error {
	body := map[string]string{"email": email, "otp": code, "requestId": requestID}
	return c.do(ctx, http.MethodPost, "/api/auth/verify-otp", body, nil)
}

// CurrentUser devuelve el perfil autenticado; plan nil significa sin plan.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/api/user/me", nil, &out); err != nil {
		return domain.User{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// ToggleFavorite alterna el favorito en el servidor y devuelve el estado
// que el servidor considera vigente, que es siempre autoritativo.
func (c *Client) ToggleFavorite(ctx context.Context, shopID string) (bool, error) {
	var out struct {
		IsFavorite bool `json:"isFavorite"`
	}
	path := "/api/favorites/" + url.PathEscape(shopID)
	if err := c.do(ctx, http.MethodPost, path, map[string]string{}, &out); err != nil {
		return false, err
	}
	return out.IsFavorite, nil
}

// ListFavorites trae el conjunto completo de favoritos para el resync.
func (c *Client) ListFavorites(ctx context.Context) ([]domain.Shop, error) {
	var out struct {
		Shops []domain.Shop `json:"shops"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out.Shops, nil
}

// ListShops trae el feed de locales para descubrimiento.
func (c *Client) ListShops(ctx context.Context) ([]domain.Shop, error) {
	var out struct {
		Shops []domain.Shop `json:"shops"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/shops", nil, &out); err != nil {
		return nil, err
	}
	return out.Shops, nil
}

// ListCoupons trae los cupones aprobados y públicos del local.
func (c *Client) ListCoupons(ctx context.Context, shopID string) ([]domain.Coupon, error) {
	var out struct {
		Coupons []domain.Coupon `json:"coupons"`
	}
	path := "/api/coupons?shopId=" + url.QueryEscape(shopID) + "&status=approved&isPublic=true"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Coupons, nil
}

// TodayUsage responde si el usuario ya canjeó un cupón en el local hoy.
// Se consulta por local cada vez que se abre la lista; puede cambiar desde
// otro dispositivo, así que nunca se cachea más allá del popup.
func (c *Client) TodayUsage(ctx context.Context, shopID string) (bool, error) {
	var out struct {
		UsedToday bool `json:"usedToday"`
	}
	path := "/api/coupons/usage?shopId=" + url.QueryEscape(shopID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.UsedToday, nil
}

// RedeemCoupon consume el cupón en el local indicado.
func (c *Client) RedeemCoupon(ctx context.Context, couponID, shopID string) error {
	path := "/api/coupons/" + url.PathEscape(couponID) + "/use"
	return c.do(ctx, http.MethodPost, path, map[string]string{"shopId": shopID}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := newAPIError(resp.StatusCode, raw)
		c.logger.Warn("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
