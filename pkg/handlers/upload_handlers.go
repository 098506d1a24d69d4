package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"game-catalog/pkg/models"
	"game-catalog/pkg/upload"
)

// multipartMemory is how much of a multipart body is held in memory
// before spilling to temp files
const multipartMemory = 32 << 20

// TypeOption is one presentation type choice on the form
type TypeOption struct {
	Value    string
	Label    string
	Selected bool
}

// PlatformOption is one platform checkbox on the form
type PlatformOption struct {
	Name    string
	Checked bool
}

// UploadPage is the upload form model
type UploadPage struct {
	Token     string
	Types     []TypeOption
	Platforms []PlatformOption
	Layout    upload.Layout
	MaxSizeMB int64

	Draft   upload.Draft
	Message string
	Error   string
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	ID      string `json:"id,omitempty"`
}

func (s *Server) uploadPage(d upload.Draft) UploadPage {
	if d.Type == "" {
		d.Type = models.TypeIframe
	}
	if d.Platforms == nil {
		d.Platforms = upload.ApplyPlatformDefaults(d.Type, nil)
	}

	checked := make(map[string]bool, len(d.Platforms))
	for _, p := range d.Platforms {
		checked[p] = true
	}
	platforms := make([]PlatformOption, 0, len(upload.Platforms))
	for _, p := range upload.Platforms {
		platforms = append(platforms, PlatformOption{Name: p, Checked: checked[p]})
	}

	types := []TypeOption{
		{Value: string(models.TypeIframe), Label: "Web (Embed)"},
		{Value: string(models.TypeDownload), Label: "Download"},
		{Value: string(models.TypeExternal), Label: "External Link"},
	}
	for i := range types {
		types[i].Selected = types[i].Value == string(d.Type)
	}

	return UploadPage{
		Token:     s.opts.Tracker.Start(),
		Types:     types,
		Platforms: platforms,
		Layout:    upload.LayoutFor(d.Type),
		MaxSizeMB: upload.MaxFileSize / (1024 * 1024),
		Draft:     d,
	}
}

// UploadForm renders an empty form. ?type= preselects a presentation type.
func (s *Server) UploadForm(w http.ResponseWriter, r *http.Request) {
	d := upload.Draft{Type: models.ParsePresentationType(r.URL.Query().Get("type"))}
	s.page(w, http.StatusOK, "upload", s.uploadPage(d))
}

// Upload runs the submission workflow for a posted form
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.uploadFailed(w, r, upload.Draft{}, "", upload.ErrFileTooLarge)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	d := draftFromForm(r)
	token := r.FormValue("token")
	if !upload.Valid(token) {
		token = ""
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		d.File = &upload.File{Name: header.Filename, Size: header.Size, Reader: file}
	}

	var progress upload.ProgressCallback
	if token != "" {
		progress = s.opts.Tracker.Callback(token)
	}

	game, err := s.workflow.Submit(r.Context(), d, progress)
	if err != nil {
		s.uploadFailed(w, r, d, token, err)
		return
	}

	if wantsJSON(r) {
		s.json(w, http.StatusOK, uploadResponse{Success: true, Message: upload.SuccessMessage, ID: game.ID})
		return
	}
	p := s.uploadPage(upload.Draft{})
	p.Message = upload.SuccessMessage
	s.page(w, http.StatusOK, "upload", p)
}

func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, d upload.Draft, token string, err error) {
	msg := upload.UserMessage(err)
	if token != "" {
		s.opts.Tracker.Fail(token, msg)
	}

	status := http.StatusBadGateway
	var invalid *upload.ValidationError
	if errors.As(err, &invalid) || errors.Is(err, upload.ErrFileTooLarge) {
		status = http.StatusBadRequest
	}

	if wantsJSON(r) {
		s.json(w, status, uploadResponse{Error: msg})
		return
	}
	d.File = nil
	p := s.uploadPage(d)
	p.Error = msg
	s.page(w, status, "upload", p)
}

// UploadProgress reports the tracked stage of a submission
func (s *Server) UploadProgress(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if !upload.Valid(token) {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}
	p, ok := s.opts.Tracker.Get(token)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.json(w, http.StatusOK, p)
}

// SuggestID derives a game id from ?title=
func (s *Server) SuggestID(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]string{"id": upload.SuggestID(r.URL.Query().Get("title"))})
}

func draftFromForm(r *http.Request) upload.Draft {
	t := models.ParsePresentationType(r.FormValue("type"))
	platforms := r.Form["platform"]
	if platforms == nil {
		platforms = []string{}
	}
	return upload.Draft{
		ID:            r.FormValue("id"),
		Title:         strings.TrimSpace(r.FormValue("title")),
		Category:      strings.TrimSpace(r.FormValue("category")),
		DeveloperName: strings.TrimSpace(r.FormValue("developer")),
		Thumbnail:     strings.TrimSpace(r.FormValue("thumbnail")),
		AspectRatio:   strings.TrimSpace(r.FormValue("aspectRatio")),
		Type:          t,
		Platforms:     platforms,
		PlayURL:       strings.TrimSpace(r.FormValue("url")),
		FileSize:      strings.TrimSpace(r.FormValue("fileSize")),
	}
}
