package client

import (
	"context"

	"go.uber.org/zap"

	"drinkpass/internal/gateway"
	"drinkpass/internal/store"
)

// sessionExpirer es lo único que el flujo de favoritos necesita del dueño
// de la sesión cuando una credencial es rechazada.
type sessionExpirer interface {
	ForceExpire()
}

// FavoriteService implementa el toggle de favoritos en tres fases:
// aplicar tentativo, esperar confirmación, reconciliar o revertir. El
// gesto siempre responde al instante; la convergencia con el servidor
// llega después.
type FavoriteService struct {
	logger   *zap.Logger
	gw       Gateway
	state    *AppState
	fallback store.FavoriteStore
	sessions sessionExpirer
}

func NewFavoriteService(logger *zap.Logger, gw Gateway, state *AppState, fallback store.FavoriteStore, sessions sessionExpirer) *FavoriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{
		logger:   logger,
		gw:       gw,
		state:    state,
		fallback: fallback,
		sessions: sessions,
	}
}

// Toggle alterna el favorito del local. Sin sesión va directo al respaldo
// local, sin red. Con sesión aplica el flip optimista, confirma contra el
// servidor y reconcilia: el eco del servidor manda sobre la conjetura, un
// 401/403 mata la sesión pero preserva la intención del gesto en el
// respaldo local, y cualquier otro error revierte al valor pre-toggle.
func (s *FavoriteService) Toggle(ctx context.Context, shopID string) error {
	shop, ok := s.state.Shop(shopID)
	if !ok {
		// Toggle sobre un local que ya no está cargado: no-op defensivo.
		s.logger.Warn("toggle on unknown shop ignored", zap.String("shop_id", shopID))
		return nil
	}
	pre := shop.IsFavorite
	post := !pre

	if !s.state.Authenticated() {
		if err := s.writeFallback(shopID, post); err != nil {
			s.logger.Warn("fallback store write failed", zap.Error(err))
		}
		s.state.SetFavorite(shopID, post)
		return nil
	}

	// Fase 1: flip optimista. La UI es verdad entre el gesto y la
	// reconciliación.
	s.state.SetFavorite(shopID, post)

	// Fase 2: confirmación.
	echoed, err := s.gw.ToggleFavorite(ctx, shopID)
	if err != nil {
		if gateway.IsAuthError(err) {
			// Sesión recién expirada: el gesto del usuario no se pierde.
			s.sessions.ForceExpire()
			if werr := s.writeFallback(shopID, post); werr != nil {
				s.logger.Warn("fallback store write failed", zap.Error(werr))
			}
			return ErrSessionExpired
		}
		// Fase 3 (rama revertir): vuelta exacta al valor pre-toggle.
		s.state.SetFavorite(shopID, pre)
		return err
	}

	// Fase 3 (rama reconciliar): el servidor es autoritativo si discrepa.
	if echoed != post {
		s.state.SetFavorite(shopID, echoed)
	}

	// Resync completo, secuenciado estrictamente después de la respuesta
	// del toggle: supersede el estado optimista inmediatamente anterior.
	if err := s.Resync(ctx); err != nil {
		s.logger.Warn("favorite resync failed", zap.Error(err))
	}
	return nil
}

// Resync sobreescribe todas las banderas de favorito con el conjunto
// completo del servidor.
func (s *FavoriteService) Resync(ctx context.Context) error {
	shops, err := s.gw.ListFavorites(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]struct{}, len(shops))
	for _, shop := range shops {
		ids[shop.ID] = struct{}{}
	}
	s.state.ApplyFavoriteSet(ids)
	return nil
}

// ApplyLocalFavorites marca el feed con los favoritos del respaldo local.
// Se usa al renderizar como invitado, donde no hay conjunto del servidor.
func (s *FavoriteService) ApplyLocalFavorites() {
	if s.fallback == nil {
		return
	}
	idList, err := s.fallback.List()
	if err != nil {
		s.logger.Warn("fallback store read failed", zap.Error(err))
		return
	}
	ids := make(map[string]struct{}, len(idList))
	for _, id := range idList {
		ids[id] = struct{}{}
	}
	s.state.ApplyFavoriteSet(ids)
}

func (s *FavoriteService) writeFallback(shopID string, favorite bool) error {
	if s.fallback == nil {
		return nil
	}
	if favorite {
		return s.fallback.Add(shopID)
	}
	return s.fallback.Remove(shopID)
}
