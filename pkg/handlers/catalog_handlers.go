package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"game-catalog/pkg/catalog"
	"game-catalog/pkg/detail"
	"game-catalog/pkg/favorites"
	"game-catalog/pkg/render"
	"game-catalog/pkg/storage"
)

// LoadGamesError is shown when the listing cannot be fetched
const LoadGamesError = "Failed to load games. Is the backend running?"

// IndexPage is the listing page model
type IndexPage struct {
	Listing render.Listing
	Error   string
}

// GamePage is the detail page model
type GamePage struct {
	View detail.View
}

func (s *Server) favorites(w http.ResponseWriter, r *http.Request) *favorites.Store {
	return favorites.New(storage.NewCookieStore(w, r, storage.LocalStorage(s.opts.CookieSecure)))
}

// Index renders the filtered listing
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	games, err := s.opts.Catalog.Games(r.Context())
	if err != nil {
		s.logger.Error("failed to load games", "err", err)
		s.page(w, http.StatusOK, "index", IndexPage{Error: LoadGamesError})
		return
	}

	state := catalog.NewState(games)
	state.SetCategory(r.URL.Query().Get("category"))
	state.SetSearch(r.URL.Query().Get("q"))

	favs := s.favorites(w, r)
	s.page(w, http.StatusOK, "index", IndexPage{
		Listing: s.renderer(r).Listing(state, favs.Set()),
	})
}

// Game renders the detail page for ?id=
func (s *Server) Game(w http.ResponseWriter, r *http.Request) {
	view := s.loader.Load(r.Context(), r.URL.Query().Get("id"), preferences(r)...)
	s.page(w, http.StatusOK, "game", GamePage{View: view})
}

type favoriteResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
	Rerender bool   `json:"rerender"`
}

// ToggleFavorite flips one favorite. Script callers get JSON; form posts
// are sent back to the listing they came from.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	state := catalog.NewState(nil)
	state.SetCategory(r.FormValue("category"))
	state.SetSearch(r.FormValue("q"))
	ctrl := catalog.NewController(state, s.favorites(w, r))

	favorite, rerender, err := ctrl.ToggleFavorite(id)
	if err != nil {
		s.logger.Error("failed to toggle favorite", "id", id, "err", err)
		http.Error(w, "Failed to save favorite", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		s.json(w, http.StatusOK, favoriteResponse{ID: id, Favorite: favorite, Rerender: rerender})
		return
	}
	http.Redirect(w, r, render.ListingURL(state.Category(), state.Search()), http.StatusSeeOther)
}
