package client

import (
	"sync"

	"drinkpass/internal/domain"
)

// Screen identifica la pantalla activa. Navegación pura, sin I/O.
type Screen string

const (
	ScreenHome             Screen = "home"
	ScreenLogin            Screen = "login"
	ScreenPlanRegistration Screen = "plan_registration"
	ScreenShopDetail       Screen = "shop_detail"
)

// SessionState es la foto de sesión que ve la vista. Plan solo tiene
// sentido con Authenticated=true; nil autenticado significa "sin plan",
// no "desconocido".
type SessionState struct {
	Authenticated bool
	User          *domain.User
}

// Filters son los filtros de descubrimiento elegidos por el usuario.
type Filters struct {
	Area          string
	Genre         string
	FavoritesOnly bool
}

// AppState es el contenedor explícito de estado de la aplicación: sesión,
// navegación, filtros y locales, cada slice con su mutador estilo reducer.
// Un solo mutex preserva la disciplina de un escritor a la vez.
type AppState struct {
	mu      sync.Mutex
	session SessionState
	screen  Screen
	shopID  string
	filters Filters
	shops   []domain.Shop
}

func NewAppState() *AppState {
	return &AppState{screen: ScreenHome}
}

// SetSession marca la sesión como autenticada con el perfil dado.
func (s *AppState) SetSession(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.session = SessionState{Authenticated: true, User: &u}
}

// ClearSession destruye la sesión (logout o credencial rechazada).
func (s *AppState) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = SessionState{}
}

func (s *AppState) Session() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.session
	if s.session.User != nil {
		u := *s.session.User
		out.User = &u
	}
	return out
}

func (s *AppState) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Authenticated
}

// SetScreen cambia la pantalla activa; shopID acompaña a las pantallas de
// detalle y queda vacío en el resto.
func (s *AppState) SetScreen(screen Screen, shopID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = screen
	s.shopID = shopID
}

func (s *AppState) ActiveScreen() (Screen, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen, s.shopID
}

func (s *AppState) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

func (s *AppState) ActiveFilters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetShops reemplaza el feed de locales cargado.
func (s *AppState) SetShops(shops []domain.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops = make([]domain.Shop, len(shops))
	copy(s.shops, shops)
}

// Shop devuelve una copia del local, o false si no está cargado.
func (s *AppState) Shop(shopID string) (domain.Shop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shop := range s.shops {
		if shop.ID == shopID {
			return shop, true
		}
	}
	return domain.Shop{}, false
}

func (s *AppState) Shops() []domain.Shop {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Shop, len(s.shops))
	copy(out, s.shops)
	return out
}

// VisibleShops aplica los filtros activos sobre el feed cargado.
func (s *AppState) VisibleShops() []domain.Shop {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Shop
	for _, shop := range s.shops {
		if s.filters.Area != "" && shop.Area != s.filters.Area {
			continue
		}
		if s.filters.Genre != "" && shop.Genre != s.filters.Genre {
			continue
		}
		if s.filters.FavoritesOnly && !shop.IsFavorite {
			continue
		}
		out = append(out, shop)
	}
	return out
}

// SetFavorite muta la única bandera que el núcleo posee sobre un local.
// Devuelve false si el local ya no está cargado (respuesta tardía sobre un
// feed que cambió), en cuyo caso no se toca nada.
func (s *AppState) SetFavorite(shopID string, favorite bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shops {
		if s.shops[i].ID == shopID {
			s.shops[i].IsFavorite = favorite
			return true
		}
	}
	return false
}

// ApplyFavoriteSet sobreescribe todas las banderas de favorito con el
// conjunto autoritativo del servidor (resync completo).
func (s *AppState) ApplyFavoriteSet(ids map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shops {
		_, fav := ids[s.shops[i].ID]
		s.shops[i].IsFavorite = fav
	}
}
