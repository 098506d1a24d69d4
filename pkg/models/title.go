package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/language"
)

// defaultLanguage is the variant shown when no preference matches
const defaultLanguage = "en"

// LocalizedText is a title that the backend sends either as a plain string
// or as a mapping from language code to text.
type LocalizedText struct {
	Text     string
	Variants map[string]string
}

// PlainText builds a LocalizedText from a single string
func PlainText(s string) LocalizedText {
	return LocalizedText{Text: s}
}

// UnmarshalJSON accepts both the string and the mapping form
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = LocalizedText{Text: s}
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("title must be a string or a language map: %w", err)
	}
	*t = LocalizedText{Variants: m}
	return nil
}

// MarshalJSON writes the same shape that was read
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.Variants != nil {
		return json.Marshal(t.Variants)
	}
	return json.Marshal(t.Text)
}

// MarshalYAML mirrors MarshalJSON for exports
func (t LocalizedText) MarshalYAML() (interface{}, error) {
	if t.Variants != nil {
		return t.Variants, nil
	}
	return t.Text, nil
}

// String returns the default display text
func (t LocalizedText) String() string {
	return t.Localize()
}

// Localize picks the variant that best matches the given preferences.
// Without a confident match it falls back to English, then to the first
// variant in key order, then to the plain text.
func (t LocalizedText) Localize(prefs ...language.Tag) string {
	if len(t.Variants) == 0 {
		return t.Text
	}

	keys := make([]string, 0, len(t.Variants))
	for k := range t.Variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(prefs) > 0 {
		tags := make([]language.Tag, 0, len(keys))
		tagKeys := make([]string, 0, len(keys))
		for _, k := range keys {
			tag, err := language.Parse(k)
			if err != nil {
				continue
			}
			tags = append(tags, tag)
			tagKeys = append(tagKeys, k)
		}
		if len(tags) > 0 {
			_, idx, conf := language.NewMatcher(tags).Match(prefs...)
			if conf != language.No {
				if v := t.Variants[tagKeys[idx]]; v != "" {
					return v
				}
			}
		}
	}

	if v := t.Variants[defaultLanguage]; v != "" {
		return v
	}
	for _, k := range keys {
		if v := t.Variants[k]; v != "" {
			return v
		}
	}
	return t.Text
}
