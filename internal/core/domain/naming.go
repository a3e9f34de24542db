package domain

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	moduleExt     = ".js"
	indexBaseName = "index"
	partialPrefix = "_"
)

// Entry is an asset module found under the source root.
// Paths are slash-separated and relative to their root.
type Entry struct {
	Source string
	Output string
	Kind   AssetKind
}

// ParseEntry applies the naming rule to a path relative to the source root:
// "<dir>/<name>.<ext>.js" becomes an entry producing "<dir>/<name>.<ext>".
// Names starting with an underscore are partials and never entries.
func ParseEntry(rel string) (Entry, bool) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if !strings.HasSuffix(rel, moduleExt) {
		return Entry{}, false
	}
	base := path.Base(rel)
	if strings.HasPrefix(base, partialPrefix) {
		return Entry{}, false
	}
	kind, ok := AssetKindOf(base)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Source: rel,
		Output: strings.TrimSuffix(rel, moduleExt),
		Kind:   kind,
	}, true
}

// AssetKindOf returns the asset kind encoded in a module file name. Partials
// carry a kind too: they are rendered when imported, only never as entries.
func AssetKindOf(base string) (AssetKind, bool) {
	if !strings.HasSuffix(base, moduleExt) {
		return "", false
	}
	trimmed := strings.TrimSuffix(base, moduleExt)
	ext := path.Ext(trimmed)
	if ext == "" || len(trimmed) == len(ext) {
		return "", false
	}
	return ParseAssetKind(strings.TrimPrefix(ext, "."))
}

// SourceCandidates maps a request path onto the source modules that could
// produce it, in lookup order. It is the inverse of the static output
// mirroring: "/a/" and "/a/index.html" map to "a/index.html.js", and an
// extensionless "/about" tries "about/index.html.js" then "about.html.js".
// A nil result means the path can never be served by a module.
func SourceCandidates(requestPath string) []string {
	trailing := strings.HasSuffix(requestPath, "/")
	rel := strings.TrimPrefix(path.Clean("/"+requestPath), "/")

	var candidates []string
	switch {
	case rel == "":
		candidates = []string{indexBaseName + ".html" + moduleExt}
	case trailing:
		candidates = []string{rel + "/" + indexBaseName + ".html" + moduleExt}
	case path.Ext(rel) != "":
		candidates = []string{rel + moduleExt}
	default:
		candidates = []string{
			rel + "/" + indexBaseName + ".html" + moduleExt,
			rel + ".html" + moduleExt,
		}
	}

	out := candidates[:0]
	for _, c := range candidates {
		if hidden(c) {
			continue
		}
		if _, ok := ParseEntry(c); ok {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// hidden reports whether any segment of p starts with a dot.
func hidden(p string) bool {
	for seg := range strings.SplitSeq(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
