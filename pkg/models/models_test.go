package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLocalizedText_DecodesBothShapes(t *testing.T) {
	var g struct {
		Plain  LocalizedText `json:"plain"`
		Mapped LocalizedText `json:"mapped"`
		Empty  LocalizedText `json:"empty"`
	}
	err := json.Unmarshal([]byte(`{"plain":"Space Goat","mapped":{"en":"Tetris","ru":"Тетрис"},"empty":null}`), &g)
	require.NoError(t, err)

	assert.Equal(t, "Space Goat", g.Plain.String())
	assert.Equal(t, "Tetris", g.Mapped.String())
	assert.Equal(t, "", g.Empty.String())
}

func TestLocalizedText_RejectsOtherShapes(t *testing.T) {
	var lt LocalizedText
	assert.Error(t, json.Unmarshal([]byte(`42`), &lt))
}

func TestLocalizedText_MarshalPreservesShape(t *testing.T) {
	out, err := json.Marshal(PlainText("Snake"))
	require.NoError(t, err)
	assert.JSONEq(t, `"Snake"`, string(out))

	out, err = json.Marshal(LocalizedText{Variants: map[string]string{"en": "Snake", "de": "Schlange"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"en":"Snake","de":"Schlange"}`, string(out))
}

func TestLocalizedText_Localize(t *testing.T) {
	lt := LocalizedText{Variants: map[string]string{"en": "Snake", "de": "Schlange"}}

	tests := []struct {
		name  string
		prefs []language.Tag
		want  string
	}{
		{name: "no preference uses english", want: "Snake"},
		{name: "matching preference", prefs: []language.Tag{language.German}, want: "Schlange"},
		{name: "regional preference", prefs: []language.Tag{language.MustParse("de-AT")}, want: "Schlange"},
		{name: "unmatched preference falls back", prefs: []language.Tag{language.Japanese}, want: "Snake"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lt.Localize(tt.prefs...))
		})
	}

	noEnglish := LocalizedText{Variants: map[string]string{"fr": "Serpent", "de": "Schlange"}}
	assert.Equal(t, "Schlange", noEnglish.Localize(), "first key in order when english is missing")
}

func TestGame_AddedAt(t *testing.T) {
	g := Game{DateAdded: "2026-10-01T12:30:00.000Z"}
	at, ok := g.AddedAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC), at)

	_, ok = Game{DateAdded: "yesterday"}.AddedAt()
	assert.False(t, ok)
	_, ok = Game{}.AddedAt()
	assert.False(t, ok)
}

func TestParsePresentationType(t *testing.T) {
	assert.Equal(t, TypeDownload, ParsePresentationType("download"))
	assert.Equal(t, TypeExternal, ParsePresentationType(" External "))
	assert.Equal(t, TypeIframe, ParsePresentationType("iframe"))
	assert.Equal(t, TypeIframe, ParsePresentationType(""))
	assert.Equal(t, TypeIframe, ParsePresentationType("flash"))
}

func TestStoredFile_Name(t *testing.T) {
	assert.Equal(t, "game.zip", StoredFile{Key: "games/cool-game/game.zip"}.Name())
	assert.Equal(t, "game.zip", StoredFile{Key: "game.zip"}.Name())
}
