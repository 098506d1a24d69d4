// Package render turns the filtered catalog view into card view models.
// Untrusted text only reaches templates through sanitize.HTML.
package render

import (
	"html/template"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"game-catalog/pkg/catalog"
	"game-catalog/pkg/models"
	"game-catalog/pkg/sanitize"
)

const (
	// PlaceholderImage replaces thumbnails that fail validation or loading
	PlaceholderImage = "/img/placeholder.svg"
	// NewBadgeWindow is how long a game counts as new
	NewBadgeWindow = 14 * 24 * time.Hour
	// untitled is shown for games without a title
	untitled = "Untitled Game"
)

// Card is one game tile on the listing page
type Card struct {
	ID          string
	Title       template.HTML
	Alt         string
	Thumbnail   string
	DetailURL   string
	FavoriteURL string
	IsNew       bool
	IsHosted    bool
	IsFavorite  bool
}

// Button is one category filter button
type Button struct {
	Label  string
	Value  string
	URL    string
	Active bool
}

// Listing is everything the listing page shows
type Listing struct {
	Buttons  []Button
	Cards    []Card
	Empty    bool
	Category string
	Search   string
}

// Renderer builds view models. Base is the site origin used to resolve
// relative thumbnail URLs.
type Renderer struct {
	Base  string
	Now   func() time.Time
	Prefs []language.Tag
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Cards renders the given games in order
func (r Renderer) Cards(games []models.Game, favorites map[string]bool) []Card {
	now := r.now()
	cards := make([]Card, 0, len(games))
	for _, g := range games {
		title := g.Title.Localize(r.Prefs...)
		if title == "" {
			title = untitled
		}

		thumbnail := PlaceholderImage
		if g.Thumbnail != "" {
			thumbnail = sanitize.URLOr(g.Thumbnail, r.Base, PlaceholderImage)
		}

		cards = append(cards, Card{
			ID:          g.ID,
			Title:       sanitize.HTML(title),
			Alt:         title,
			Thumbnail:   thumbnail,
			DetailURL:   DetailURL(g.ID),
			FavoriteURL: "/favorites/" + url.PathEscape(g.ID),
			IsNew:       isNew(g, now),
			IsHosted:    g.IsSelfHosted(),
			IsFavorite:  favorites[g.ID],
		})
	}
	return cards
}

// Listing renders the filtered view of state
func (r Renderer) Listing(state *catalog.State, favorites map[string]bool) Listing {
	cards := r.Cards(state.FilteredView(favorites), favorites)

	categories := catalog.Categories(state.Items())
	buttons := make([]Button, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, Button{
			Label:  c.Label,
			Value:  c.Value,
			URL:    ListingURL(c.Value, state.Search()),
			Active: c.Value == state.Category(),
		})
	}

	return Listing{
		Buttons:  buttons,
		Cards:    cards,
		Empty:    len(cards) == 0,
		Category: state.Category(),
		Search:   state.Search(),
	}
}

// Bind re-renders into sink on every state change
func (r Renderer) Bind(state *catalog.State, favorites func() map[string]bool, sink func(Listing)) {
	state.Subscribe(func(s *catalog.State) {
		sink(r.Listing(s, favorites()))
	})
}

func isNew(g models.Game, now time.Time) bool {
	added, ok := g.AddedAt()
	if !ok {
		return false
	}
	return now.Sub(added) < NewBadgeWindow
}

// DetailURL links to the detail page of id
func DetailURL(id string) string {
	return "/game?id=" + url.QueryEscape(id)
}

// ListingURL links to the listing with the given filters
func ListingURL(category, search string) string {
	v := url.Values{}
	if category != "" && category != catalog.CategoryAll {
		v.Set("category", category)
	}
	if search != "" {
		v.Set("q", search)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}
