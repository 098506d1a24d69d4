package catalog

import (
	"fmt"

	"game-catalog/pkg/favorites"
	"game-catalog/pkg/models"
)

// Controller couples a listing State with the favorites store for one page
type Controller struct {
	State     *State
	Favorites *favorites.Store
}

// NewController creates a controller
func NewController(state *State, favs *favorites.Store) *Controller {
	return &Controller{State: state, Favorites: favs}
}

// View returns the currently filtered games
func (c *Controller) View() []models.Game {
	return c.State.FilteredView(c.Favorites.Set())
}

// ToggleFavorite flips the favorite state of id. When the favorites view
// is active the state is refreshed so unfavorited games drop out at once;
// rerender reports whether that happened.
func (c *Controller) ToggleFavorite(id string) (favorite, rerender bool, err error) {
	favorite, err = c.Favorites.Toggle(id)
	if err != nil {
		return false, false, fmt.Errorf("toggle favorite %s: %w", id, err)
	}
	if c.State.Category() == CategoryFavorites {
		c.State.Refresh()
		return favorite, true, nil
	}
	return favorite, false, nil
}
