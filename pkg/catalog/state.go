// Package catalog holds the listing page state and derives the filtered view.
package catalog

import (
	"strings"

	"game-catalog/pkg/models"
)

const (
	// CategoryAll passes every game
	CategoryAll = "all"
	// CategoryFavorites restricts the view to favorited games
	CategoryFavorites = "favorites"
)

// Category is one filter button
type Category struct {
	Label string
	Value string
}

// State is the listing state owned by one page controller. It is not
// safe for concurrent use.
type State struct {
	items       []models.Game
	category    string
	query       string
	search      string
	subscribers []func(*State)
}

// NewState creates a state over items with the default filters
func NewState(items []models.Game) *State {
	return &State{items: items, category: CategoryAll}
}

// Items returns the full list as fetched
func (s *State) Items() []models.Game {
	return s.items
}

// Category returns the active category
func (s *State) Category() string {
	return s.category
}

// Search returns the active search text as entered
func (s *State) Search() string {
	return s.query
}

// Subscribe registers fn to run after every state change
func (s *State) Subscribe(fn func(*State)) {
	s.subscribers = append(s.subscribers, fn)
}

// SetCategory changes the active category. An empty value selects all.
func (s *State) SetCategory(c string) {
	if c == "" {
		c = CategoryAll
	}
	s.category = c
	s.notify()
}

// SetSearch changes the active search text. Matching ignores case.
func (s *State) SetSearch(q string) {
	s.query = q
	s.search = strings.ToLower(q)
	s.notify()
}

// Refresh notifies subscribers without changing anything, for changes
// made outside the state such as a favorite toggle.
func (s *State) Refresh() {
	s.notify()
}

func (s *State) notify() {
	for _, fn := range s.subscribers {
		fn(s)
	}
}

// FilteredView applies the category filter and then the search filter.
// The original ordering is preserved.
func (s *State) FilteredView(favorites map[string]bool) []models.Game {
	filtered := make([]models.Game, 0, len(s.items))
	for _, g := range s.items {
		if !s.matchesCategory(g, favorites) {
			continue
		}
		if s.search != "" && !MatchesSearch(g, s.search) {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}

func (s *State) matchesCategory(g models.Game, favorites map[string]bool) bool {
	switch s.category {
	case CategoryAll:
		return true
	case CategoryFavorites:
		return favorites[g.ID]
	default:
		return g.Category == s.category
	}
}

// MatchesSearch reports whether the display title or any tag contains q,
// ignoring case.
func MatchesSearch(g models.Game, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(g.Title.String()), q) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Categories derives the filter buttons: All, Favorites, then every
// distinct category in first-seen order.
func Categories(items []models.Game) []Category {
	buttons := []Category{
		{Label: "All", Value: CategoryAll},
		{Label: "Favorites ♥", Value: CategoryFavorites},
	}
	seen := make(map[string]bool)
	for _, g := range items {
		if seen[g.Category] {
			continue
		}
		seen[g.Category] = true
		buttons = append(buttons, Category{Label: g.Category, Value: g.Category})
	}
	return buttons
}
