package models

import (
	"strings"
	"time"
)

// PresentationType describes how a game is played
type PresentationType string

const (
	// TypeIframe embeds the game in a frame on the detail page
	TypeIframe PresentationType = "iframe"
	// TypeDownload offers the game as a downloadable file
	TypeDownload PresentationType = "download"
	// TypeExternal links to the game on another site
	TypeExternal PresentationType = "external"
)

// ParsePresentationType maps a form or query value to a known type.
// Anything unrecognised is treated as an embed.
func ParsePresentationType(s string) PresentationType {
	switch PresentationType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeDownload:
		return TypeDownload
	case TypeExternal:
		return TypeExternal
	default:
		return TypeIframe
	}
}

// HostingType tells where the playable asset lives
type HostingType string

const (
	// HostingSelf marks files stored in the backend's own bucket
	HostingSelf HostingType = "r2"
	// HostingExternal marks assets hosted elsewhere
	HostingExternal HostingType = "external"
)

// Hosting is the hosting descriptor of a game
type Hosting struct {
	Type        HostingType `json:"type" yaml:"type"`
	PrimaryFile string      `json:"primaryFile,omitempty" yaml:"primaryFile,omitempty"`
	URL         string      `json:"url,omitempty" yaml:"url,omitempty"`
}

// Developer identifies who made a game
type Developer struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Viewport carries the presentation hints for embedded games
type Viewport struct {
	AspectRatio string `json:"aspectRatio" yaml:"aspectRatio"`
	Fullscreen  bool   `json:"fullscreen" yaml:"fullscreen"`
}

// FileRecord describes a file uploaded for a game
type FileRecord struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Size int64  `json:"size" yaml:"size"`
	Type string `json:"type" yaml:"type"`
}

// Game is a single catalog item as served by the backend
type Game struct {
	ID        string           `json:"id" yaml:"id"`
	Title     LocalizedText    `json:"title" yaml:"title"`
	Category  string           `json:"category" yaml:"category"`
	Tags      []string         `json:"tags" yaml:"tags"`
	Developer Developer        `json:"developer" yaml:"developer"`
	Type      PresentationType `json:"type" yaml:"type"`
	Platform  []string         `json:"platform,omitempty" yaml:"platform,omitempty"`
	Thumbnail string           `json:"thumbnail" yaml:"thumbnail"`
	Viewport  Viewport         `json:"viewport" yaml:"viewport"`
	DateAdded string           `json:"dateAdded,omitempty" yaml:"dateAdded,omitempty"`
	Hosting   *Hosting         `json:"hosting,omitempty" yaml:"hosting,omitempty"`
	Files     []FileRecord     `json:"files" yaml:"files,omitempty"`
	FileSize  string           `json:"fileSize,omitempty" yaml:"fileSize,omitempty"`

	// Legacy fields kept for older consumers of the backend
	PlayURL     string `json:"playUrl,omitempty" yaml:"playUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty" yaml:"downloadUrl,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// IsSelfHosted reports whether the game's files live in the backend's storage
func (g Game) IsSelfHosted() bool {
	return g.Hosting != nil && g.Hosting.Type == HostingSelf
}

// AddedAt parses DateAdded. The second value is false when the date is
// missing or unparseable.
func (g Game) AddedAt() (time.Time, bool) {
	if g.DateAdded == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, g.DateAdded); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SubmitResult is the backend's answer to a game submission
type SubmitResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UploadResult is the backend's answer to a file upload
type UploadResult struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// ActionResult is the backend's answer to a moderation action
type ActionResult struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	FilesDeleted int    `json:"filesDeleted,omitempty"`
}

// GameStorage aggregates the stored files of one game
type GameStorage struct {
	FileCount int   `json:"fileCount" yaml:"fileCount"`
	TotalSize int64 `json:"totalSize" yaml:"totalSize"`
}

// StorageOverview aggregates all stored files
type StorageOverview struct {
	TotalFiles int                    `json:"totalFiles" yaml:"totalFiles"`
	TotalSize  int64                  `json:"totalSize" yaml:"totalSize"`
	Games      map[string]GameStorage `json:"games" yaml:"games"`
}

// StoredFile is one object in the backend's storage
type StoredFile struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Name returns the last path segment of the storage key
func (f StoredFile) Name() string {
	if i := strings.LastIndex(f.Key, "/"); i >= 0 {
		return f.Key[i+1:]
	}
	return f.Key
}

// FileList is the listing of a game's stored files
type FileList struct {
	Files []StoredFile `json:"files"`
}
