package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"

	"github.com/gorilla/mux"
	"golang.org/x/text/language"

	"game-catalog/pkg/admin"
	"game-catalog/pkg/models"
	"game-catalog/pkg/render"
	"game-catalog/pkg/sanitize"
	"game-catalog/pkg/storage"
	"game-catalog/pkg/upload"
)

// PendingCard is one game awaiting moderation
type PendingCard struct {
	ID         string
	Title      template.HTML
	Developer  template.HTML
	PreviewURL string
	FilesURL   string
}

// StorageRow is the stored-file summary of one game
type StorageRow struct {
	ID        string
	FileCount int
	Size      string
	FilesURL  string
	Confirm   string
}

// StorageView is the storage overview panel
type StorageView struct {
	TotalFiles int
	TotalSize  string
	Games      []StorageRow
}

// FileRow is one stored file in the files modal
type FileRow struct {
	Name    string
	Size    string
	URL     string
	Confirm string
}

// AdminPage is the dashboard model
type AdminPage struct {
	LoggedIn bool
	Message  string
	Error    string

	Pending      []PendingCard
	PendingError string

	Storage      *StorageView
	StorageError string

	FilesFor string
	Files    []FileRow
}

type actionResponse struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	LoggedOut bool   `json:"loggedOut"`
}

// dashboard binds a dashboard to the caller's session cookies. confirm
// reports the form's confirmation field.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) *admin.Dashboard {
	store := storage.NewCookieStore(w, r, storage.SessionStorage(s.opts.CookieSecure))
	confirm := admin.ConfirmFunc(func(string) bool {
		return r.FormValue("confirm") == "yes"
	})
	return admin.NewDashboard(admin.NewSession(store, s.opts.Now), s.opts.Connect, confirm, s.opts.Catalog, s.logger)
}

// Admin renders the login form or the dashboard
func (s *Server) Admin(w http.ResponseWriter, r *http.Request) {
	d := s.dashboard(w, r)
	if !d.Session().LoggedIn() {
		s.page(w, http.StatusOK, "admin", AdminPage{})
		return
	}
	res, err := d.Load(r.Context())
	s.adminPage(w, r, d, res, err)
}

// AdminLogin stores the posted key and loads the dashboard
func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, admin.Request{Action: "login", Key: r.FormValue("key")})
}

// AdminLogout clears the session
func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	d := s.dashboard(w, r)
	if _, err := d.Dispatch(r.Context(), admin.Request{Action: "logout"}); err != nil {
		s.logger.Error("failed to log out", "err", err)
	}
	if wantsJSON(r) {
		s.json(w, http.StatusOK, actionResponse{LoggedOut: true})
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// AdminAction dispatches the posted action id
func (s *Server) AdminAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, admin.Request{
		Action:   r.FormValue("action"),
		ID:       r.FormValue("id"),
		Filename: r.FormValue("filename"),
	})
}

// AdminFiles shows the files modal for one game
func (s *Server) AdminFiles(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, admin.Request{Action: "view-files", ID: mux.Vars(r)["id"]})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req admin.Request) {
	d := s.dashboard(w, r)
	res, err := d.Dispatch(r.Context(), req)
	if errors.Is(err, admin.ErrUnknownAction) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err == nil && (req.Action == "approve" || req.Action == "reject") && s.opts.Invalidate != nil {
		s.opts.Invalidate()
	}
	if err != nil && !errors.Is(err, admin.ErrCancelled) {
		s.logger.Error("admin action failed", "action", req.Action, "id", req.ID, "err", err)
	}

	if wantsJSON(r) {
		out := actionResponse{Error: admin.UserMessage(err)}
		if res != nil {
			out.Message = res.Message
			out.LoggedOut = res.LoggedOut
		}
		out.LoggedOut = out.LoggedOut || !d.Session().LoggedIn()
		s.json(w, http.StatusOK, out)
		return
	}
	s.adminPage(w, r, d, res, err)
}

// adminPage renders the dashboard after an operation. Panels the
// operation did not fetch are loaded so the page is always complete.
func (s *Server) adminPage(w http.ResponseWriter, r *http.Request, d *admin.Dashboard, res *admin.Result, err error) {
	page := AdminPage{Error: admin.UserMessage(err)}
	if !d.Session().LoggedIn() {
		s.page(w, http.StatusOK, "admin", page)
		return
	}
	page.LoggedIn = true

	if res == nil {
		res = &admin.Result{}
	}
	if res.Pending == nil && res.PendingErr == nil {
		res.Pending, res.PendingErr = d.Pending(r.Context())
	}
	if res.Storage == nil && res.StorageErr == nil {
		res.Storage, res.StorageErr = d.Storage(r.Context())
	}
	if !d.Session().LoggedIn() {
		page.LoggedIn = false
		page.Error = admin.UserMessage(admin.ErrLoggedOut)
		s.page(w, http.StatusOK, "admin", page)
		return
	}

	page.Message = res.Message
	page.Pending = pendingCards(res.Pending, preferences(r))
	if res.PendingErr != nil {
		page.PendingError = admin.UserMessage(res.PendingErr)
	}
	if res.Storage != nil {
		page.Storage = storageView(res.Storage)
	}
	if res.StorageErr != nil {
		page.StorageError = admin.UserMessage(res.StorageErr)
	}
	if res.Files != nil {
		page.FilesFor = res.FilesFor
		page.Files = s.fileRows(res.Files)
	}
	s.page(w, http.StatusOK, "admin", page)
}

func pendingCards(games []models.Game, prefs []language.Tag) []PendingCard {
	cards := make([]PendingCard, 0, len(games))
	for _, g := range games {
		dev := g.Developer.Name
		if dev == "" {
			dev = "Unknown"
		}
		cards = append(cards, PendingCard{
			ID:         g.ID,
			Title:      sanitize.HTML(g.Title.Localize(prefs...)),
			Developer:  sanitize.HTML(dev),
			PreviewURL: render.DetailURL(g.ID),
			FilesURL:   filesURL(g.ID),
		})
	}
	return cards
}

func storageView(o *models.StorageOverview) *StorageView {
	v := &StorageView{TotalFiles: o.TotalFiles, TotalSize: upload.FormatMB(o.TotalSize)}
	for id, stats := range o.Games {
		v.Games = append(v.Games, StorageRow{
			ID:        id,
			FileCount: stats.FileCount,
			Size:      upload.FormatMB(stats.TotalSize),
			FilesURL:  filesURL(id),
			Confirm:   admin.ConfirmDeleteAll(id),
		})
	}
	sort.Slice(v.Games, func(i, j int) bool { return v.Games[i].ID < v.Games[j].ID })
	return v
}

func (s *Server) fileRows(list *models.FileList) []FileRow {
	rows := make([]FileRow, 0, len(list.Files))
	for _, f := range list.Files {
		rows = append(rows, FileRow{
			Name:    f.Name(),
			Size:    fmt.Sprintf("%.2f KB", float64(f.Size)/1024),
			URL:     s.opts.APIBase + f.URL,
			Confirm: admin.ConfirmDeleteFile(f.Name()),
		})
	}
	return rows
}

func filesURL(id string) string {
	return "/admin/files/" + url.PathEscape(id)
}
