package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-catalog/pkg/models"
)

func pugViews() PugRenderer {
	return PugRenderer{Dir: "../../views"}
}

func TestPugRenderer_CompilesEveryView(t *testing.T) {
	pages := map[string]any{
		"index":  IndexPage{},
		"game":   GamePage{},
		"upload": UploadPage{},
		"admin":  AdminPage{},
	}
	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, pugViews().Render(&buf, name, data))
			assert.Contains(t, buf.String(), "Pineapple Games", "layout is applied")
			assert.NotContains(t, buf.String(), "ZgotmplZ")
		})
	}
}

func TestPugRenderer_MissingView(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, pugViews().Render(&buf, "nope", nil))
}

func TestIndexView_Markup(t *testing.T) {
	f := newFixtureWith(t, pugViews())
	f.catalog.games = []models.Game{
		{ID: "xss", Title: models.PlainText("<script>alert(1)</script> Cool"), Category: "puzzle", DateAdded: "2026-10-10"},
		{ID: "other", Title: models.PlainText("Other"), Category: "action"},
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/?q=Cool", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt; Cool")
	assert.NotContains(t, body, "<script>alert(1)")
	assert.Contains(t, body, `value="Cool"`, "search box shows the text as typed")
	assert.Contains(t, body, `action="/favorites/xss"`)
	assert.Contains(t, body, `data-fallback="/img/placeholder.svg"`)
	assert.Contains(t, body, "NEW")
	assert.NotContains(t, body, "Other</h3>")
}

func TestIndexView_NoResults(t *testing.T) {
	f := newFixtureWith(t, pugViews())
	rec := f.do(httptest.NewRequest(http.MethodGet, "/?q=zzz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No games found")
}

func TestGameView_Embed(t *testing.T) {
	f := newFixtureWith(t, pugViews())
	f.catalog.games = []models.Game{{
		ID:       "embed",
		Title:    models.PlainText("Embed"),
		Type:     models.TypeIframe,
		PlayURL:  "https://games.example.com/embed/",
		Viewport: models.Viewport{AspectRatio: "16/9", Fullscreen: true},
	}}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/game?id=embed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `style="aspect-ratio: 16/9"`)
	assert.Contains(t, body, "allowfullscreen")
	assert.Contains(t, body, `src="https://games.example.com/embed/"`)
	assert.NotContains(t, body, "ZgotmplZ")
}

func TestGameView_Download(t *testing.T) {
	f := newFixtureWith(t, pugViews())
	f.catalog.games = []models.Game{{
		ID:          "dl",
		Title:       models.PlainText("Dl"),
		Type:        models.TypeDownload,
		DownloadURL: "https://files.example.com/dl.zip",
		FileSize:    "25 MB",
		Platform:    []string{"<Win>", "Mac"},
	}}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/game?id=dl", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<span class="platform-tag">&lt;Win&gt;</span>`)
	assert.NotContains(t, body, "<Win>")
	assert.Contains(t, body, "File Size: 25 MB")
	assert.Contains(t, body, "Download Now")
	assert.NotContains(t, body, "allowfullscreen")
}

func TestGameView_Error(t *testing.T) {
	f := newFixtureWith(t, pugViews())
	rec := f.do(httptest.NewRequest(http.MethodGet, "/game?id=missing", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load game data.")
}

func TestUploadView_Form(t *testing.T) {
	f := newFixtureWith(t, pugViews())
	rec := f.do(httptest.NewRequest(http.MethodGet, "/upload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `name="token" value="`)
	assert.Contains(t, body, "Game URL (Embed/Iframe)")
	assert.Contains(t, body, `data-max-size="104857600"`)
	assert.Contains(t, body, `id="filesize-group" class="form-group hidden"`)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/upload?type=download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="filesize-group" class="form-group"`)
}

func TestAdminView_Dashboard(t *testing.T) {
	f := newFixtureWith(t, pugViews())

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="login-form"`)

	rec = f.do(postForm("/admin/login", url.Values{"key": {"secret"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "&lt;b&gt;New&lt;/b&gt;")
	assert.Contains(t, body, `data-action="approve" data-confirm="Approve this game?"`)
	assert.Contains(t, body, `data-action="reject" data-confirm="DELETE this game AND ALL ITS FILES permanently?"`)
	assert.Contains(t, body, `name="confirm" value=""`)
	assert.Contains(t, body, `href="/admin/files/new-game"`)
	assert.Contains(t, body, `data-confirm="DELETE ALL FILES for cool-game? This cannot be undone!"`)
	assert.Contains(t, body, "2.00 MB")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/files/cool-game", nil), rec.Result().Cookies()...)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()

	assert.Contains(t, body, `data-action="delete-file" data-confirm="Delete game.zip? This cannot be undone."`)
	assert.Contains(t, body, `name="id" value="cool-game"`)
	assert.Contains(t, body, `name="filename" value="game.zip"`)
	assert.Contains(t, body, `href="http://api.example.com/api/files/cool-game/game.zip"`)
}
