package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FavoriteStore guarda la membresía de favoritos para usuarios no
// autenticados. Es el respaldo local: puro get/add/remove, sin red, con
// namespace propio separado de cualquier dato del servidor.
type FavoriteStore interface {
	Contains(shopID string) (bool, error)
	Add(shopID string) error
	Remove(shopID string) error
	List() ([]string, error)
}

type memoryFavoriteStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemoryFavoriteStore crea un respaldo en memoria, útil en tests y como
// degradación cuando no hay ruta de archivo configurada.
func NewMemoryFavoriteStore() FavoriteStore {
	return &memoryFavoriteStore{ids: make(map[string]struct{})}
}

func (s *memoryFavoriteStore) Contains(shopID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[shopID]
	return ok, nil
}

func (s *memoryFavoriteStore) Add(shopID string) error {
	if strings.TrimSpace(shopID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[shopID] = struct{}{}
	return nil
}

func (s *memoryFavoriteStore) Remove(shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, shopID)
	return nil
}

func (s *memoryFavoriteStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type fileFavoriteStore struct {
	mu   sync.Mutex
	path string
}

type fileFavoritePayload struct {
	Namespace string   `json:"namespace"`
	ShopIDs   []string `json:"shop_ids"`
}

const fileNamespace = "drinkpass.guest_favorites"

// NewFileFavoriteStore persiste el conjunto en un archivo JSON, el análogo
// host-side del almacenamiento local del navegador.
func NewFileFavoriteStore(path string) (FavoriteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("favorite store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileFavoriteStore{path: path}, nil
}

func (s *fileFavoriteStore) Contains(shopID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := ids[shopID]
	return ok, nil
}

func (s *fileFavoriteStore) Add(shopID string) error {
	if strings.TrimSpace(shopID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return err
	}
	ids[shopID] = struct{}{}
	return s.save(ids)
}

func (s *fileFavoriteStore) Remove(shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return err
	}
	delete(ids, shopID)
	return s.save(ids)
}

func (s *fileFavoriteStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fileFavoriteStore) load() (map[string]struct{}, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]struct{}), nil
		}
		return nil, err
	}
	var payload fileFavoritePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Archivo corrupto: se arranca vacío antes que romper el flujo.
		return make(map[string]struct{}), nil
	}
	ids := make(map[string]struct{}, len(payload.ShopIDs))
	for _, id := range payload.ShopIDs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *fileFavoriteStore) save(ids map[string]struct{}) error {
	payload := fileFavoritePayload{Namespace: fileNamespace}
	for id := range ids {
		payload.ShopIDs = append(payload.ShopIDs, id)
	}
	sort.Strings(payload.ShopIDs)
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}
