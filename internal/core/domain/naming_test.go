package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/spool/internal/core/domain"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		path   string
		ok     bool
		output string
		kind   domain.AssetKind
	}{
		{path: "a/index.html.js", ok: true, output: "a/index.html", kind: domain.KindHTML},
		{path: "style.css.js", ok: true, output: "style.css", kind: domain.KindCSS},
		{path: "icons/logo.svg.js", ok: true, output: "icons/logo.svg", kind: domain.KindSVG},
		{path: "docs/readme.md.js", ok: true, output: "docs/readme.md", kind: domain.KindMD},
		{path: "api/data.json.js", ok: true, output: "api/data.json", kind: domain.KindJSON},
		{path: "app.js.js", ok: true, output: "app.js", kind: domain.KindJS},
		{path: "/leading/slash.html.js", ok: true, output: "leading/slash.html", kind: domain.KindHTML},
		{path: "lib/helpers.js", ok: false},
		{path: "image.png.js", ok: false},
		{path: "_layout.html.js", ok: false},
		{path: ".html.js", ok: false},
		{path: "index.html", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			entry, ok := domain.ParseEntry(tt.path)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.output, entry.Output)
			assert.Equal(t, tt.kind, entry.Kind)
		})
	}
}

func TestSourceCandidates(t *testing.T) {
	tests := []struct {
		request string
		want    []string
	}{
		{request: "/", want: []string{"index.html.js"}},
		{request: "", want: []string{"index.html.js"}},
		{request: "/a/", want: []string{"a/index.html.js"}},
		{request: "/a/index.html", want: []string{"a/index.html.js"}},
		{request: "/style.css", want: []string{"style.css.js"}},
		{request: "/data/feed.json", want: []string{"data/feed.json.js"}},
		{request: "/about", want: []string{"about/index.html.js", "about.html.js"}},
		{request: "/../../etc/passwd", want: []string{"etc/passwd/index.html.js", "etc/passwd.html.js"}},
		{request: "/favicon.ico", want: nil},
		{request: "/.git/config", want: nil},
		{request: "/_partial.html", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.SourceCandidates(tt.request))
		})
	}
}

func TestAssetKind_ContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", domain.KindHTML.ContentType())
	assert.Equal(t, "text/css; charset=utf-8", domain.KindCSS.ContentType())
	assert.Equal(t, "image/svg+xml", domain.KindSVG.ContentType())
	assert.Equal(t, "application/json", domain.KindJSON.ContentType())
	assert.Equal(t, "text/plain; charset=utf-8", domain.AssetKind("bin").ContentType())
}

func TestAssetKindOf(t *testing.T) {
	tests := []struct {
		base string
		kind domain.AssetKind
		ok   bool
	}{
		{base: "index.html.js", kind: domain.KindHTML, ok: true},
		{base: "_layout.html.js", kind: domain.KindHTML, ok: true},
		{base: "_theme.css.js", kind: domain.KindCSS, ok: true},
		{base: "_helpers.js", ok: false},
		{base: "helpers.js", ok: false},
		{base: "index.html", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			kind, ok := domain.AssetKindOf(tt.base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
