package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sourcegraph/conc"

	"game-catalog/pkg/backend"
	"game-catalog/pkg/models"
)

// ErrCancelled is returned when the moderator declines a confirmation
var ErrCancelled = errors.New("cancelled")

// API is the moderation surface of the backend
type API interface {
	Pending(ctx context.Context) ([]models.Game, error)
	Approve(ctx context.Context, id string) (*models.ActionResult, error)
	Reject(ctx context.Context, id string) (*models.ActionResult, error)
	Storage(ctx context.Context) (*models.StorageOverview, error)
	Files(ctx context.Context, id string) (*models.FileList, error)
	DeleteFile(ctx context.Context, id, name string) error
}

// Connect returns an API bound to one credential
type Connect func(key string) API

// BackendConnect binds admin calls to the REST client
func BackendConnect(c *backend.Client) Connect {
	return func(key string) API {
		return c.Admin(key)
	}
}

// Catalog lists the published games
type Catalog interface {
	Games(ctx context.Context) ([]models.Game, error)
}

// Confirmer asks the moderator before irreversible actions
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Confirmation prompts
const (
	ConfirmApprove = "Approve this game?"
	ConfirmReject  = "DELETE this game AND ALL ITS FILES permanently?"
)

// ConfirmDeleteFile is the prompt before deleting one stored file
func ConfirmDeleteFile(name string) string {
	return fmt.Sprintf("Delete %s? This cannot be undone.", name)
}

// ConfirmDeleteAll is the prompt before deleting every file of id
func ConfirmDeleteAll(id string) string {
	return fmt.Sprintf("DELETE ALL FILES for %s? This cannot be undone!", id)
}

// AlwaysConfirm approves every prompt
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Result is what a dashboard operation leaves on screen. Lists are always
// re-fetched after a mutation.
type Result struct {
	Message string

	Pending    []models.Game
	PendingErr error

	Storage    *models.StorageOverview
	StorageErr error

	FilesFor string
	Files    *models.FileList

	LoggedOut bool
}

// Orphan is a storage entry with no published or pending game
type Orphan struct {
	ID        string
	FileCount int
	TotalSize int64
}

// Dashboard runs moderation operations with the session's credential
type Dashboard struct {
	session *Session
	connect Connect
	confirm Confirmer
	catalog Catalog
	logger  *slog.Logger
}

// NewDashboard creates a dashboard. catalog may be nil when Orphans is
// not needed.
func NewDashboard(session *Session, connect Connect, confirm Confirmer, catalog Catalog, logger *slog.Logger) *Dashboard {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		session: session,
		connect: connect,
		confirm: confirm,
		catalog: catalog,
		logger:  logger,
	}
}

// Session returns the dashboard's session
func (d *Dashboard) Session() *Session {
	return d.session
}

func (d *Dashboard) api() (API, error) {
	key, ok := d.session.Current()
	if !ok {
		return nil, ErrLoggedOut
	}
	return d.connect(key), nil
}

// guard tears the session down on 401
func (d *Dashboard) guard(err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		d.logger.Warn("admin key rejected, logging out")
		if lerr := d.session.Logout(); lerr != nil {
			d.logger.Error("failed to clear session", "err", lerr)
		}
	}
	return err
}

// Pending lists games waiting for approval
func (d *Dashboard) Pending(ctx context.Context) ([]models.Game, error) {
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	games, err := api.Pending(ctx)
	return games, d.guard(err)
}

// Storage fetches the storage overview
func (d *Dashboard) Storage(ctx context.Context) (*models.StorageOverview, error) {
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	overview, err := api.Storage(ctx)
	return overview, d.guard(err)
}

// Files lists the stored files of id
func (d *Dashboard) Files(ctx context.Context, id string) (*models.FileList, error) {
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	files, err := api.Files(ctx, id)
	return files, d.guard(err)
}

// Load fetches the pending list and the storage overview concurrently.
// The two are independent: one failing leaves the other in place. Only
// a 401 fails the whole load.
func (d *Dashboard) Load(ctx context.Context) (*Result, error) {
	api, err := d.api()
	if err != nil {
		return &Result{LoggedOut: true}, err
	}

	res := &Result{}
	var wg conc.WaitGroup
	wg.Go(func() {
		res.Pending, res.PendingErr = api.Pending(ctx)
	})
	wg.Go(func() {
		res.Storage, res.StorageErr = api.Storage(ctx)
	})
	wg.Wait()

	for _, err := range []error{res.PendingErr, res.StorageErr} {
		if errors.Is(err, backend.ErrUnauthorized) {
			return &Result{LoggedOut: true}, d.guard(err)
		}
	}
	if res.PendingErr != nil {
		d.logger.Error("failed to load pending games", "err", res.PendingErr)
	}
	if res.StorageErr != nil {
		d.logger.Error("failed to load storage", "err", res.StorageErr)
	}
	return res, nil
}

// Approve publishes id after confirmation
func (d *Dashboard) Approve(ctx context.Context, id string) (*Result, error) {
	return d.moderate(ctx, "approve", id, ConfirmApprove)
}

// Reject deletes id and all of its files after confirmation
func (d *Dashboard) Reject(ctx context.Context, id string) (*Result, error) {
	return d.moderate(ctx, "reject", id, ConfirmReject)
}

func (d *Dashboard) moderate(ctx context.Context, kind, id, prompt string) (*Result, error) {
	if !d.confirm.Confirm(prompt) {
		return nil, ErrCancelled
	}
	api, err := d.api()
	if err != nil {
		return nil, err
	}

	var action func(context.Context, string) (*models.ActionResult, error)
	if kind == "approve" {
		action = api.Approve
	} else {
		action = api.Reject
	}
	outcome, err := action(ctx, id)
	if err != nil {
		return nil, d.guard(err)
	}

	res, err := d.Load(ctx)
	if err != nil {
		return res, err
	}
	res.Message = "Game approved!"
	if kind == "reject" {
		res.Message = "Game rejected!"
	}
	if outcome.FilesDeleted > 0 {
		res.Message += fmt.Sprintf(" (%d files deleted)", outcome.FilesDeleted)
	}
	d.logger.Info("moderated game", "action", kind, "id", id, "files_deleted", outcome.FilesDeleted)
	return res, nil
}

// ViewFiles lists the files of id for display
func (d *Dashboard) ViewFiles(ctx context.Context, id string) (*Result, error) {
	files, err := d.Files(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{FilesFor: id, Files: files}, nil
}

// DeleteFile removes one file after confirmation and re-fetches the file
// list and the overview
func (d *Dashboard) DeleteFile(ctx context.Context, id, name string) (*Result, error) {
	if !d.confirm.Confirm(ConfirmDeleteFile(name)) {
		return nil, ErrCancelled
	}
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	if err := api.DeleteFile(ctx, id, name); err != nil {
		return nil, d.guard(fmt.Errorf("delete file %s: %w", name, err))
	}
	d.logger.Info("deleted file", "id", id, "file", name)

	res := &Result{Message: "File deleted", FilesFor: id}
	if res.Files, err = d.Files(ctx, id); err != nil {
		return res, err
	}
	res.Storage, res.StorageErr = d.Storage(ctx)
	if errors.Is(res.StorageErr, backend.ErrUnauthorized) {
		return res, res.StorageErr
	}
	return res, nil
}

// DeleteAllFiles deletes every listed file of id one at a time. It is not
// atomic: a failing delete is logged and the sequence goes on, and the
// reported count is the number attempted.
func (d *Dashboard) DeleteAllFiles(ctx context.Context, id string) (*Result, error) {
	if !d.confirm.Confirm(ConfirmDeleteAll(id)) {
		return nil, ErrCancelled
	}
	api, err := d.api()
	if err != nil {
		return nil, err
	}
	list, err := api.Files(ctx, id)
	if err != nil {
		return nil, d.guard(err)
	}

	for _, f := range list.Files {
		if err := api.DeleteFile(ctx, id, f.Name()); err != nil {
			if errors.Is(err, backend.ErrUnauthorized) {
				return nil, d.guard(err)
			}
			d.logger.Error("failed to delete file", "id", id, "file", f.Name(), "err", err)
		}
	}
	d.logger.Info("deleted all files", "id", id, "attempted", len(list.Files))

	res := &Result{Message: fmt.Sprintf("Deleted %d files", len(list.Files))}
	res.Storage, res.StorageErr = d.Storage(ctx)
	if errors.Is(res.StorageErr, backend.ErrUnauthorized) {
		return res, res.StorageErr
	}
	return res, nil
}

// Orphans reports storage entries whose id is neither published nor
// pending. Nothing is deleted.
func (d *Dashboard) Orphans(ctx context.Context) ([]Orphan, error) {
	if d.catalog == nil {
		return nil, errors.New("no catalog configured")
	}
	overview, err := d.Storage(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := d.Pending(ctx)
	if err != nil {
		return nil, err
	}
	published, err := d.catalog.Games(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published games: %w", err)
	}

	known := make(map[string]bool, len(pending)+len(published))
	for _, g := range pending {
		known[g.ID] = true
	}
	for _, g := range published {
		known[g.ID] = true
	}

	orphans := []Orphan{}
	for id, stats := range overview.Games {
		if known[id] {
			continue
		}
		orphans = append(orphans, Orphan{ID: id, FileCount: stats.FileCount, TotalSize: stats.TotalSize})
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].ID < orphans[j].ID })
	return orphans, nil
}

// UserMessage renders err for the moderator. A cancelled confirmation
// renders as nothing.
func UserMessage(err error) string {
	var remote *backend.RemoteError
	switch {
	case err == nil, errors.Is(err, ErrCancelled):
		return ""
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, ErrLoggedOut):
		return "Session ended. Please log in again."
	case errors.As(err, &remote):
		return "Error: " + remote.Message
	default:
		return "Error: " + err.Error()
	}
}
