// Package handlers serves the listing, detail, upload and admin pages.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/eknkc/pug"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"golang.org/x/text/language"

	"game-catalog/pkg/admin"
	"game-catalog/pkg/detail"
	"game-catalog/pkg/models"
	"game-catalog/pkg/offline"
	"game-catalog/pkg/render"
	"game-catalog/pkg/upload"
)

// RequestIDHeader carries the per-request id on responses
const RequestIDHeader = "X-Request-Id"

// Renderer executes a named page template
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// PugRenderer compiles <Dir>/<name>.pug on every call so edits show up
// without a restart. Fs defaults to the OS filesystem.
type PugRenderer struct {
	Dir string
	Fs  afero.Fs
}

// Render compiles and executes the named view
func (p PugRenderer) Render(w io.Writer, name string, data any) error {
	fs := p.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if p.Dir != "" {
		fs = afero.NewBasePathFs(fs, p.Dir)
	}
	tpl, err := pug.CompileFile(name+".pug", pug.Options{Dir: viewDir{fs}})
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	return tpl.Execute(w, data)
}

// viewDir resolves a view and the layouts it extends relative to the
// views directory
type viewDir struct {
	fs afero.Fs
}

func (d viewDir) Open(name string) (io.Reader, error) {
	data, err := afero.ReadFile(d.fs, name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Catalog is the published game source
type Catalog interface {
	Games(ctx context.Context) ([]models.Game, error)
	Game(ctx context.Context, id string) (*models.Game, error)
}

// Options wires a Server
type Options struct {
	APIBase      string
	SiteBase     string
	PublicDir    string
	CookieSecure bool

	Catalog Catalog
	Backend upload.Backend
	Connect admin.Connect
	Views   Renderer
	Tracker *upload.Tracker

	// Invalidate, when set, runs after a moderation action changes the
	// published list
	Invalidate func()

	Logger *slog.Logger
	Now    func() time.Time
}

// Server holds the page handlers
type Server struct {
	opts     Options
	loader   *detail.Loader
	workflow *upload.Workflow
	logger   *slog.Logger
}

// New creates a server
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tracker == nil {
		opts.Tracker = upload.NewTracker(30 * time.Minute)
	}
	return &Server{
		opts:     opts,
		loader:   detail.NewLoader(opts.Catalog, opts.APIBase, opts.SiteBase, opts.Logger),
		workflow: upload.NewWorkflow(opts.Backend, opts.Now, opts.Logger),
		logger:   opts.Logger,
	}
}

// Router mounts every route
func (s *Server) Router() (*mux.Router, error) {
	worker, err := offline.Handler()
	if err != nil {
		return nil, fmt.Errorf("service worker: %w", err)
	}

	r := mux.NewRouter()
	r.Use(s.requestID)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/", s.Index).Methods(http.MethodGet)
	r.HandleFunc("/game", s.Game).Methods(http.MethodGet)
	r.HandleFunc("/favorites/{id}", s.ToggleFavorite).Methods(http.MethodPost)

	r.HandleFunc("/upload", s.UploadForm).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.Upload).Methods(http.MethodPost)
	r.HandleFunc("/upload/progress/{token}", s.UploadProgress).Methods(http.MethodGet)
	r.HandleFunc("/upload/suggest-id", s.SuggestID).Methods(http.MethodGet)

	r.HandleFunc("/admin", s.Admin).Methods(http.MethodGet)
	r.HandleFunc("/admin/login", s.AdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/admin/logout", s.AdminLogout).Methods(http.MethodPost)
	r.HandleFunc("/admin/action", s.AdminAction).Methods(http.MethodPost)
	r.HandleFunc("/admin/files/{id}", s.AdminFiles).Methods(http.MethodGet)

	r.Handle("/sw.js", worker).Methods(http.MethodGet)
	if s.opts.PublicDir != "" {
		for _, dir := range []string{"css", "js", "img"} {
			prefix := "/" + dir + "/"
			fs := http.FileServer(http.Dir(filepath.Join(s.opts.PublicDir, dir)))
			r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, fs))
		}
	}
	return r, nil
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		start := s.opts.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "took", s.opts.Now().Sub(start))
	})
}

// page renders name into a buffer first so a template error still yields
// a clean 500
func (s *Server) page(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.opts.Views.Render(&buf, name, data); err != nil {
		s.logger.Error("template error", "view", name, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write json", "err", err)
	}
}

func (s *Server) renderer(r *http.Request) render.Renderer {
	return render.Renderer{Base: s.opts.SiteBase, Now: s.opts.Now, Prefs: preferences(r)}
}

// preferences parses Accept-Language, ignoring malformed headers
func preferences(r *http.Request) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return nil
	}
	return tags
}

// wantsJSON reports whether the caller is the page script rather than a
// plain form post
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
