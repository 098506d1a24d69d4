package upload

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Progress is the last known state of one submission
type Progress struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Error   string `json:"error,omitempty"`
}

// Tracker keeps submission progress per token so a page can poll it
type Tracker struct {
	items *cache.Cache
}

// NewTracker creates a tracker whose entries expire after ttl
func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{items: cache.New(ttl, 2*ttl)}
}

// Start issues a fresh token in the editing stage
func (t *Tracker) Start() string {
	token := uuid.NewString()
	t.items.SetDefault(token, Progress{Stage: StageEditing})
	return token
}

// Valid reports whether token is a well formed token
func Valid(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}

// Update records a stage change
func (t *Tracker) Update(token string, stage Stage, percent int) {
	p, _ := t.Get(token)
	p.Stage = stage
	p.Percent = percent
	t.items.SetDefault(token, p)
}

// Fail records a failure message
func (t *Tracker) Fail(token string, msg string) {
	p, _ := t.Get(token)
	p.Stage = StageFailed
	p.Error = msg
	t.items.SetDefault(token, p)
}

// Get returns the progress of token
func (t *Tracker) Get(token string) (Progress, bool) {
	v, ok := t.items.Get(token)
	if !ok {
		return Progress{}, false
	}
	return v.(Progress), true
}

// Callback returns a ProgressCallback that records into token
func (t *Tracker) Callback(token string) ProgressCallback {
	return func(stage Stage, progress int) {
		t.Update(token, stage, progress)
	}
}
