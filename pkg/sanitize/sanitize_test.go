package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeForMarkup(t *testing.T) {
	assert.Equal(t, "", EscapeForMarkup(""))
	assert.Equal(t, "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt; &quot;quoted&quot; &#039;single&#039;",
		EscapeForMarkup(`<b>Tom & Jerry</b> "quoted" 'single'`))
}

func TestSanitizeForInsertion_NoRawSignificantCharacters(t *testing.T) {
	inputs := []string{
		`<script>alert("x")</script>`,
		`" onerror="alert(1)`,
		`'><img src=x>`,
		`Tom & Jerry`,
		`&amp; already escaped`,
		"plain title",
		"ünïcödé <3",
	}
	for _, in := range inputs {
		out := SanitizeForInsertion(in)
		assert.NotContains(t, out, "<", in)
		assert.NotContains(t, out, ">", in)
		assert.NotContains(t, out, `"`, in)
		assert.NotContains(t, out, "'", in)
		// every ampersand left in the output starts an entity
		for i := strings.Index(out, "&"); i >= 0; {
			rest := out[i:]
			assert.True(t, strings.HasPrefix(rest, "&amp;") || strings.HasPrefix(rest, "&lt;") ||
				strings.HasPrefix(rest, "&gt;") || strings.HasPrefix(rest, "&#34;") ||
				strings.HasPrefix(rest, "&#39;") || strings.HasPrefix(rest, "&#13;"), "input %q output %q", in, out)
			next := strings.Index(out[i+1:], "&")
			if next < 0 {
				break
			}
			i += next + 1
		}
	}
	assert.Equal(t, "", SanitizeForInsertion(""))
	assert.Equal(t, "plain title", SanitizeForInsertion("plain title"))
}

func TestHTML_IsSanitized(t *testing.T) {
	assert.Equal(t, "&lt;i&gt;hi&lt;/i&gt;", string(HTML("<i>hi</i>")))
}

func TestValidateURL(t *testing.T) {
	const base = "http://localhost:8080"

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "absolute https", in: "https://example.com/g", want: "https://example.com/g", ok: true},
		{name: "absolute http", in: "http://cdn.example.com/a.png?x=1", want: "http://cdn.example.com/a.png?x=1", ok: true},
		{name: "relative resolves against base", in: "img/a.png", want: "http://localhost:8080/img/a.png", ok: true},
		{name: "root relative", in: "/api/files/x.zip", want: "http://localhost:8080/api/files/x.zip", ok: true},
		{name: "javascript scheme", in: "javascript:alert(1)", ok: false},
		{name: "mixed case javascript", in: "JaVaScRiPt:alert(1)", ok: false},
		{name: "data scheme", in: "data:text/html,<script>alert(1)</script>", ok: false},
		{name: "ftp scheme", in: "ftp://example.com/file", ok: false},
		{name: "malformed host", in: "http://[::1", ok: false},
		{name: "missing host", in: "https://", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValidateURL(tt.in, base)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestURLOr(t *testing.T) {
	assert.Equal(t, "/img/placeholder.svg", URLOr("javascript:void(0)", "http://localhost", "/img/placeholder.svg"))
	assert.Equal(t, "https://example.com/t.png", URLOr("https://example.com/t.png", "http://localhost", "/img/placeholder.svg"))
}
