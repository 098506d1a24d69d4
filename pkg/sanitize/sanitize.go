// Package sanitize escapes untrusted text and vets URLs before they are
// placed into rendered markup.
package sanitize

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var markupReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeForMarkup replaces the five HTML-significant characters with entities.
func EscapeForMarkup(text string) string {
	if text == "" {
		return ""
	}
	return markupReplacer.Replace(text)
}

// SanitizeForInsertion renders text as a text node and returns the markup
// the renderer produced for it.
func SanitizeForInsertion(text string) string {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, &html.Node{Type: html.TextNode, Data: text}); err != nil {
		// Rendering into a buffer only fails on writer errors
		return EscapeForMarkup(text)
	}
	return buf.String()
}

// HTML is the only way render code turns untrusted text into trusted markup.
func HTML(text string) template.HTML {
	return template.HTML(SanitizeForInsertion(text))
}

// ValidateURL resolves raw against base and returns the absolute URL when
// the scheme is http or https.
func ValidateURL(raw, base string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	u := b.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// URLOr returns the validated URL or the fallback.
func URLOr(raw, base, fallback string) string {
	if u, ok := ValidateURL(raw, base); ok {
		return u
	}
	return fallback
}
