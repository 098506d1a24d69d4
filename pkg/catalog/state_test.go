package catalog

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-catalog/pkg/favorites"
	"game-catalog/pkg/models"
	"game-catalog/pkg/storage"
)

func sampleGames() []models.Game {
	return []models.Game{
		{ID: "A", Title: models.PlainText("Space Goat"), Category: "arcade", Tags: []string{"retro"}},
		{ID: "B", Title: models.LocalizedText{Variants: map[string]string{"en": "Block Drop"}}, Category: "puzzle", Tags: []string{"Tetromino"}},
		{ID: "C", Title: models.PlainText("Pipe Mania"), Category: "puzzle"},
		{ID: "D", Title: models.PlainText("Laser Run"), Category: "arcade", Tags: []string{"shooter", "Space"}},
	}
}

func ids(games []models.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}

func TestFilteredView_DefaultsToAll(t *testing.T) {
	s := NewState(sampleGames())
	assert.Equal(t, CategoryAll, s.Category())
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(s.FilteredView(nil)))
}

func TestFilteredView_Favorites(t *testing.T) {
	s := NewState(sampleGames())
	s.SetCategory(CategoryFavorites)

	assert.Equal(t, []string{"A"}, ids(s.FilteredView(map[string]bool{"A": true})))
	assert.Equal(t, []string{"A", "C"}, ids(s.FilteredView(map[string]bool{"C": true, "A": true})))
	assert.Empty(t, s.FilteredView(map[string]bool{}))
}

func TestFilteredView_ExactCategory(t *testing.T) {
	s := NewState(sampleGames())
	s.SetCategory("puzzle")
	assert.Equal(t, []string{"B", "C"}, ids(s.FilteredView(nil)))

	s.SetCategory("Puzzle")
	assert.Empty(t, s.FilteredView(nil), "category match is exact")

	s.SetCategory("")
	assert.Equal(t, CategoryAll, s.Category())
}

func TestFilteredView_Search(t *testing.T) {
	s := NewState(sampleGames())

	s.SetSearch("SPACE")
	assert.Equal(t, "SPACE", s.Search(), "shown as typed")
	assert.Equal(t, []string{"A", "D"}, ids(s.FilteredView(nil)), "title or tag, any case")

	s.SetSearch("tetro")
	assert.Equal(t, []string{"B"}, ids(s.FilteredView(nil)))

	s.SetSearch("")
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(s.FilteredView(nil)), "empty search is a no-op")
}

func TestFilteredView_CategoryThenSearch(t *testing.T) {
	s := NewState(sampleGames())
	s.SetCategory("arcade")
	s.SetSearch("laser")
	assert.Equal(t, []string{"D"}, ids(s.FilteredView(nil)))
}

func TestSubscribersRunOnChange(t *testing.T) {
	s := NewState(sampleGames())
	calls := 0
	s.Subscribe(func(*State) { calls++ })

	s.SetCategory("arcade")
	s.SetSearch("x")
	s.Refresh()
	assert.Equal(t, 3, calls)
}

func TestCategories_FirstSeenOrderOnce(t *testing.T) {
	got := Categories(sampleGames())
	require.Len(t, got, 4)
	assert.Equal(t, Category{Label: "All", Value: CategoryAll}, got[0])
	assert.Equal(t, CategoryFavorites, got[1].Value)
	assert.Equal(t, "arcade", got[2].Value)
	assert.Equal(t, "puzzle", got[3].Value)
}

func TestController_ToggleFavoriteRerendersOnlyInFavoritesView(t *testing.T) {
	favs := favorites.New(storage.NewFileStore(afero.NewMemMapFs(), "/state.json"))
	state := NewState(sampleGames())
	renders := 0
	state.Subscribe(func(*State) { renders++ })
	c := NewController(state, favs)

	on, rerender, err := c.ToggleFavorite("A")
	require.NoError(t, err)
	assert.True(t, on)
	assert.False(t, rerender)
	assert.Equal(t, 0, renders)

	state.SetCategory(CategoryFavorites)
	assert.Equal(t, []string{"A"}, ids(c.View()))
	renders = 0

	on, rerender, err = c.ToggleFavorite("A")
	require.NoError(t, err)
	assert.False(t, on)
	assert.True(t, rerender)
	assert.Equal(t, 1, renders)
	assert.Empty(t, c.View(), "unfavorited game drops out")
}
