package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"game-catalog/pkg/backend"
	"game-catalog/pkg/models"
)

// SuccessMessage is shown after a successful submission
const SuccessMessage = "Game submitted successfully! It will appear once approved by a moderator."

// Stage is a step of the submission state machine
type Stage string

const (
	StageEditing    Stage = "editing"
	StageValidating Stage = "validating"
	StageUploading  Stage = "uploading"
	StageSubmitting Stage = "submitting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// ProgressCallback receives stage changes and upload percentages
type ProgressCallback func(stage Stage, progress int)

// File is a binary attached to a draft
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Draft is the form state of one submission attempt
type Draft struct {
	ID            string
	Title         string
	Category      string
	DeveloperName string
	Thumbnail     string
	AspectRatio   string
	Type          models.PresentationType
	Platforms     []string
	PlayURL       string
	FileSize      string
	File          *File
}

// SubmitError is a failed metadata post with no file involved
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "Failed to submit game: " + reason(e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// OrphanedFileError is a metadata failure after the file was stored. The
// file stays in storage; nothing is rolled back.
type OrphanedFileError struct {
	FileURL string
	Err     error
}

func (e *OrphanedFileError) Error() string {
	return fmt.Sprintf("Failed to submit game: %s\n\nNote: Your file was uploaded successfully but the submission metadata failed. "+
		"An admin will need to clean up the orphaned file or you can try again with a different ID.", reason(e.Err))
}

func (e *OrphanedFileError) Unwrap() error {
	return e.Err
}

// Backend is the part of the REST client the workflow needs
type Backend interface {
	Upload(ctx context.Context, gameID, fileName string, r io.Reader, size int64, progress backend.ProgressFunc) (*models.UploadResult, error)
	SubmitGame(ctx context.Context, game models.Game) error
}

// Workflow submits drafts to the backend
type Workflow struct {
	backend Backend
	now     func() time.Time
	logger  *slog.Logger
}

// NewWorkflow creates a workflow. A nil now uses time.Now.
func NewWorkflow(b Backend, now func() time.Time, logger *slog.Logger) *Workflow {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{backend: b, now: now, logger: logger}
}

// Submit validates the draft, uploads its file if one is attached and the
// type allows uploads, then posts the game record. Validation errors are
// returned before the backend is contacted.
func (w *Workflow) Submit(ctx context.Context, d Draft, progress ProgressCallback) (*models.Game, error) {
	report := func(stage Stage, percent int) {
		if progress != nil {
			progress(stage, percent)
		}
	}

	report(StageValidating, 0)
	if err := Validate(d); err != nil {
		report(StageFailed, 0)
		return nil, err
	}

	hosting := models.Hosting{Type: models.HostingExternal, URL: d.PlayURL}
	files := []models.FileRecord{}

	if d.File != nil && LayoutFor(d.Type).ShowFileUpload {
		if _, err := CheckFile(d.File.Size); err != nil {
			report(StageFailed, 0)
			return nil, err
		}

		report(StageUploading, 0)
		res, err := w.backend.Upload(ctx, d.ID, d.File.Name, d.File.Reader, d.File.Size, func(percent int) {
			report(StageUploading, percent)
		})
		if err != nil {
			report(StageFailed, 0)
			w.logger.Error("upload failed", "id", d.ID, "file", d.File.Name, "err", err)
			return nil, fmt.Errorf("upload %s: %w", d.File.Name, err)
		}

		hosting = models.Hosting{Type: models.HostingSelf, PrimaryFile: res.URL}
		files = append(files, models.FileRecord{
			Name: d.File.Name,
			URL:  res.URL,
			Size: res.Size,
			Type: res.Type,
		})
	}

	game := BuildGame(d, hosting, files, w.now())

	report(StageSubmitting, 100)
	if err := w.backend.SubmitGame(ctx, game); err != nil {
		report(StageFailed, 100)
		if hosting.Type == models.HostingSelf {
			w.logger.Warn("submission failed after upload, file orphaned", "id", d.ID, "file", hosting.PrimaryFile, "err", err)
			return nil, &OrphanedFileError{FileURL: hosting.PrimaryFile, Err: err}
		}
		w.logger.Error("submission failed", "id", d.ID, "err", err)
		return nil, &SubmitError{Err: err}
	}

	report(StageDone, 100)
	w.logger.Info("game submitted", "id", d.ID, "hosting", hosting.Type)
	return &game, nil
}

// BuildGame assembles the record posted to the backend, including the
// legacy playUrl and downloadUrl fields older consumers read.
func BuildGame(d Draft, hosting models.Hosting, files []models.FileRecord, now time.Time) models.Game {
	if files == nil {
		files = []models.FileRecord{}
	}
	game := models.Game{
		ID:        d.ID,
		Title:     models.PlainText(d.Title),
		Category:  d.Category,
		Tags:      []string{},
		Developer: models.Developer{Name: d.DeveloperName, URL: ""},
		Type:      d.Type,
		Platform:  d.Platforms,
		Thumbnail: d.Thumbnail,
		Viewport:  models.Viewport{AspectRatio: d.AspectRatio, Fullscreen: false},
		DateAdded: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Hosting:   &hosting,
		Files:     files,
	}
	if d.Type == models.TypeDownload {
		game.FileSize = d.FileSize
	}

	legacy := d.PlayURL
	if hosting.Type == models.HostingSelf {
		legacy = hosting.PrimaryFile
	}
	game.PlayURL = legacy
	if d.Type == models.TypeDownload {
		game.DownloadURL = legacy
	}
	return game
}

// UserMessage renders err the way the form reports it
func UserMessage(err error) string {
	var orphaned *OrphanedFileError
	var submit *SubmitError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &orphaned), errors.As(err, &submit), errors.Is(err, ErrFileTooLarge):
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// reason prefers the backend's own message over the wrapped chain
func reason(err error) string {
	var remote *backend.RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}
