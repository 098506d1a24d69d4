// Package upload implements the game submission workflow: form layout,
// client-side validation, the optional file upload and the metadata post.
package upload

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"game-catalog/pkg/models"
)

// MaxFileSize is the largest file accepted for upload
const MaxFileSize int64 = 100 * 1024 * 1024

// WebPlatform is preselected for embedded games
const WebPlatform = "Web"

// Platforms are the checkboxes offered on the form
var Platforms = []string{WebPlatform, "Windows", "macOS", "Linux", "Android", "iOS"}

// ErrFileTooLarge rejects a file selection above MaxFileSize
var ErrFileTooLarge = errors.New("File too large! Maximum size is 100MB")

var (
	idPattern        = regexp.MustCompile(`^[a-z0-9-]+$`)
	thumbnailPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)
	nonIDChars       = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidationError is a form error caught before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Layout is which form controls a presentation type shows
type Layout struct {
	URLLabel       string
	URLHelp        string
	ShowFileSize   bool
	ShowFileUpload bool
	ShowURL        bool
	URLRequired    bool
}

// LayoutFor returns the form layout for t with no file selected
func LayoutFor(t models.PresentationType) Layout {
	l := Layout{ShowURL: true, URLRequired: true}
	switch t {
	case models.TypeDownload:
		l.URLLabel = "Download URL"
		l.URLHelp = "Direct link to the file (zip, exe, apk)."
		l.ShowFileSize = true
		l.ShowFileUpload = true
	case models.TypeExternal:
		l.URLLabel = "External Page URL"
		l.URLHelp = "Link to the game page (Itch.io, Steam, etc)."
	default:
		l.URLLabel = "Game URL (Embed/Iframe)"
		l.URLHelp = "Direct link to the index.html or iframe source."
		l.ShowFileUpload = true
	}
	return l
}

// WithFile hides the URL field and makes it optional once a file is chosen
func (l Layout) WithFile() Layout {
	if !l.ShowFileUpload {
		return l
	}
	l.ShowURL = false
	l.URLRequired = false
	return l
}

// ApplyPlatformDefaults adjusts the platform selection after the type
// changes: embeds select only Web, downloads drop Web, external links keep
// the selection.
func ApplyPlatformDefaults(t models.PresentationType, selected []string) []string {
	switch t {
	case models.TypeIframe:
		return []string{WebPlatform}
	case models.TypeDownload:
		out := make([]string, 0, len(selected))
		for _, p := range selected {
			if p != WebPlatform {
				out = append(out, p)
			}
		}
		return out
	default:
		return selected
	}
}

// CheckFile vets a selected file size and returns the size preview
func CheckFile(size int64) (string, error) {
	if size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	return FormatMB(size), nil
}

// FormatMB renders bytes as megabytes with two decimals
func FormatMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}

// Validate checks the id, thumbnail and platform rules in that order
func Validate(d Draft) error {
	if !idPattern.MatchString(d.ID) {
		return &ValidationError{Field: "id", Message: "Game ID must be lowercase alphanumeric with dashes only (e.g., my-cool-game)"}
	}
	if d.Thumbnail != "" && !thumbnailPattern.MatchString(d.Thumbnail) {
		return &ValidationError{Field: "thumbnail", Message: "Thumbnail must be a valid image URL (http/https with .jpg, .png, .gif, or .webp)"}
	}
	if len(d.Platforms) == 0 {
		return &ValidationError{Field: "platform", Message: "Please select at least one platform"}
	}
	return nil
}

// SuggestID derives a valid game id from a title
func SuggestID(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))
	s = nonIDChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
