package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-catalog/pkg/backend"
	"game-catalog/pkg/config"
	"game-catalog/pkg/models"
)

func newTestService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewService(&config.Config{CacheTTL: time.Minute}, backend.New(srv.URL, srv.Client()))
}

func TestGames_Cached(t *testing.T) {
	var hits atomic.Int32
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"id":"a","title":"A","category":"puzzle"},{"id":"b","title":"B","category":"action"}]`))
	})

	for range 3 {
		games, err := s.Games(context.Background())
		require.NoError(t, err)
		assert.Len(t, games, 2)
	}
	assert.Equal(t, int32(1), hits.Load())

	s.Invalidate()
	_, err := s.Games(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGames_ErrorsNotCached(t *testing.T) {
	var hits atomic.Int32
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"id":"a","title":"A"}]`))
	})

	_, err := s.Games(context.Background())
	require.Error(t, err)

	games, err := s.Games(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestGame_NotFound(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "cool-game" {
			w.Write([]byte(`{"id":"cool-game","title":"Cool Game"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	g, err := s.Game(context.Background(), "cool-game")
	require.NoError(t, err)
	assert.Equal(t, "Cool Game", g.Title.String())

	_, err = s.Game(context.Background(), "missing")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestCategories(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"a","title":"A","category":"puzzle"},{"id":"b","title":"B","category":"action"}]`))
	})

	cats, err := s.Categories(context.Background())
	require.NoError(t, err)
	values := make([]string, 0, len(cats))
	for _, c := range cats {
		values = append(values, c.Value)
	}
	assert.Contains(t, values, "puzzle")
	assert.Contains(t, values, "action")
}

func TestSortedByTitle(t *testing.T) {
	games := []models.Game{
		{ID: "c", Title: models.PlainText("Level 10")},
		{ID: "a", Title: models.PlainText("level 2")},
		{ID: "b", Title: models.PlainText("Alpha")},
	}
	sorted := SortedByTitle(games)
	ids := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, "c", games[0].ID, "input is left untouched")
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("game 9", "game 10"))
	assert.False(t, naturalLess("game 10", "game 9"))
	assert.True(t, naturalLess("abc", "abcd"))
	assert.False(t, naturalLess("same", "same"))
}
