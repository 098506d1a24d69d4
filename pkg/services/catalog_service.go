package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"unicode"

	"github.com/patrickmn/go-cache"

	"game-catalog/pkg/backend"
	"game-catalog/pkg/catalog"
	"game-catalog/pkg/config"
	"game-catalog/pkg/models"
)

const gamesKey = "games"

// Service caches the published catalog in front of the backend
type Service struct {
	config    *config.Config
	client    *backend.Client
	gameCache *cache.Cache
	mu        sync.RWMutex
}

var (
	// defaultService is the singleton instance of Service
	defaultService *Service
	once           sync.Once
)

// NewService creates a service with its own cache
func NewService(cfg *config.Config, client *backend.Client) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	return &Service{
		config:    cfg,
		client:    client,
		gameCache: cache.New(ttl, 2*ttl),
	}
}

// InitService initializes the default service with the given configuration
func InitService(cfg *config.Config, client *backend.Client) {
	once.Do(func() {
		defaultService = NewService(cfg, client)
	})
}

// Default returns the service set up by InitService
func Default() *Service {
	return defaultService
}

// GetGames returns the published games
func GetGames(ctx context.Context) ([]models.Game, error) {
	return defaultService.Games(ctx)
}

// GetGame returns one game by id
func GetGame(ctx context.Context, id string) (*models.Game, error) {
	return defaultService.Game(ctx, id)
}

// GetCategories returns the category buttons for the published games
func GetCategories(ctx context.Context) ([]catalog.Category, error) {
	return defaultService.Categories(ctx)
}

// Invalidate drops everything cached by the default service
func Invalidate() {
	defaultService.Invalidate()
}

// Games returns the published games, from cache when fresh. Failures are
// never cached.
func (s *Service) Games(ctx context.Context) ([]models.Game, error) {
	s.mu.RLock()
	if cached, found := s.gameCache.Get(gamesKey); found {
		s.mu.RUnlock()
		slog.Debug("using cached games")
		return cached.([]models.Game), nil
	}
	s.mu.RUnlock()

	slog.Debug("fetching games", "api", s.client.BaseURL())
	games, err := s.client.Games(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.gameCache.SetDefault(gamesKey, games)
	s.mu.Unlock()
	return games, nil
}

// Game returns one game, cached per id
func (s *Service) Game(ctx context.Context, id string) (*models.Game, error) {
	key := "game:" + id

	s.mu.RLock()
	if cached, found := s.gameCache.Get(key); found {
		s.mu.RUnlock()
		g := cached.(models.Game)
		return &g, nil
	}
	s.mu.RUnlock()

	game, err := s.client.Game(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.gameCache.SetDefault(key, *game)
	s.mu.Unlock()
	return game, nil
}

// Categories derives the category buttons from the published games
func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	games, err := s.Games(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return catalog.Categories(games), nil
}

// Invalidate drops everything cached
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.gameCache.Flush()
	s.mu.Unlock()
}

// SortedByTitle returns a copy of games ordered by display title, with
// numbers compared by value ("Level 2" before "Level 10")
func SortedByTitle(games []models.Game) []models.Game {
	sorted := append([]models.Game(nil), games...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return naturalLess(sorted[i].Title.String(), sorted[j].Title.String())
	})
	return sorted
}

// naturalLess compares strings treating runs of digits as numbers
func naturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		for i < len(ra) && unicode.IsSpace(ra[i]) {
			i++
		}
		for j < len(rb) && unicode.IsSpace(rb[j]) {
			j++
		}
		if i >= len(ra) || j >= len(rb) {
			break
		}

		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na, _ := strconv.Atoi(string(ra[si:i]))
			nb, _ := strconv.Atoi(string(rb[sj:j]))
			if na != nb {
				return na < nb
			}
			continue
		}

		ca, cb := unicode.ToLower(ra[i]), unicode.ToLower(rb[j])
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}
