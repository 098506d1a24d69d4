// Package detail loads one game and decides how the player page shows it.
package detail

import (
	"context"
	"html/template"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"game-catalog/pkg/models"
	"game-catalog/pkg/sanitize"
)

// LoadErrorMessage replaces the page content when loading fails
const LoadErrorMessage = "Failed to load game data."

// State is the loader state
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Mode is how the game is offered on the page
type Mode string

const (
	ModeEmbed    Mode = "embed"
	ModeDownload Mode = "download"
	ModeExternal Mode = "external"
)

// View is the rendered player page
type View struct {
	State State
	Error string

	ID        string
	Title     template.HTML
	Developer template.HTML
	Mode      Mode

	// URL is the resolved play or download target. Validated is false when
	// validation rejected it and the raw value is used as is.
	URL       string
	Validated bool

	AspectRatio     string
	Style           template.CSS
	AllowFullscreen bool

	CardTitle  string
	ButtonText string
	SizeText   string
	Platforms  []template.HTML
}

// Fetcher fetches one game from the backend
type Fetcher interface {
	Game(ctx context.Context, id string) (*models.Game, error)
}

// Loader drives the loading → loaded | error transition
type Loader struct {
	fetcher  Fetcher
	apiBase  string
	siteBase string
	logger   *slog.Logger
}

// NewLoader creates a loader. apiBase prefixes self-hosted paths; siteBase
// resolves relative URLs during validation.
func NewLoader(fetcher Fetcher, apiBase, siteBase string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher:  fetcher,
		apiBase:  strings.TrimRight(apiBase, "/"),
		siteBase: siteBase,
		logger:   logger,
	}
}

// Load fetches id once and renders it. Any failure yields an error view;
// there is no retry.
func (l *Loader) Load(ctx context.Context, id string, prefs ...language.Tag) View {
	if id == "" {
		return View{State: StateError, Error: LoadErrorMessage}
	}
	game, err := l.fetcher.Game(ctx, id)
	if err != nil {
		l.logger.Error("load error", "id", id, "err", err)
		return View{State: StateError, Error: LoadErrorMessage, ID: id}
	}
	if game == nil {
		l.logger.Error("game not found", "id", id)
		return View{State: StateError, Error: LoadErrorMessage, ID: id}
	}
	return Render(*game, l.apiBase, l.siteBase, prefs...)
}

// Render builds the loaded view of game
func Render(game models.Game, apiBase, siteBase string, prefs ...language.Tag) View {
	v := View{
		State:     StateLoaded,
		ID:        game.ID,
		Title:     sanitize.HTML(game.Title.Localize(prefs...)),
		Developer: sanitize.HTML("by " + game.Developer.Name),
	}
	v.URL, v.Validated = ResolveURL(game, apiBase, siteBase)

	switch game.Type {
	case models.TypeDownload:
		v.Mode = ModeDownload
		v.CardTitle = "Download Game"
		v.ButtonText = "Download Now"
		if game.FileSize != "" {
			v.SizeText = "File Size: " + game.FileSize
		}
		v.Platforms = platformTags(game.Platform)
	case models.TypeExternal:
		v.Mode = ModeExternal
		v.CardTitle = "Play Externally"
		v.ButtonText = "Play on Official Site"
		v.SizeText = "Opens in a new tab"
		v.Platforms = platformTags(game.Platform)
	default:
		v.Mode = ModeEmbed
		v.AspectRatio = aspectRatio(game.Viewport.AspectRatio)
		if v.AspectRatio != "" {
			// aspectRatio only lets two plain numbers through
			v.Style = template.CSS("aspect-ratio: " + v.AspectRatio)
		}
		v.AllowFullscreen = game.Viewport.Fullscreen
	}
	return v
}

// ResolveURL picks the play target: the self-hosted file, else the first
// of playUrl, downloadUrl and url. When validation rejects the candidate
// the raw value is returned with ok false.
func ResolveURL(game models.Game, apiBase, siteBase string) (string, bool) {
	var raw string
	if game.IsSelfHosted() {
		raw = strings.TrimRight(apiBase, "/") + game.Hosting.PrimaryFile
	} else {
		raw = firstNonEmpty(game.PlayURL, game.DownloadURL, game.URL)
	}
	if u, ok := sanitize.ValidateURL(raw, siteBase); ok {
		return u, true
	}
	return raw, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func platformTags(platforms []string) []template.HTML {
	tags := make([]template.HTML, 0, len(platforms))
	for _, p := range platforms {
		tags = append(tags, template.HTML(sanitize.EscapeForMarkup(p)))
	}
	return tags
}

// aspectRatio normalizes "w/h". Anything that is not two positive numbers
// is dropped.
func aspectRatio(s string) string {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return ""
	}
	wf, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil || !(wf > 0) || math.IsInf(wf, 0) {
		return ""
	}
	hf, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil || !(hf > 0) || math.IsInf(hf, 0) {
		return ""
	}
	return strconv.FormatFloat(wf, 'f', -1, 64) + "/" + strconv.FormatFloat(hf, 'f', -1, 64)
}
