package domain

import "time"

// AssetKind is the type of text an asset module produces.
// It is derived from the inner extension of the module name.
type AssetKind string

// Supported asset kinds.
const (
	KindHTML AssetKind = "html"
	KindCSS  AssetKind = "css"
	KindSVG  AssetKind = "svg"
	KindMD   AssetKind = "md"
	KindJSON AssetKind = "json"
	KindJS   AssetKind = "js"
)

var contentTypes = map[AssetKind]string{
	KindHTML: "text/html; charset=utf-8",
	KindCSS:  "text/css; charset=utf-8",
	KindSVG:  "image/svg+xml",
	KindMD:   "text/markdown; charset=utf-8",
	KindJSON: "application/json",
	KindJS:   "text/javascript; charset=utf-8",
}

// ParseAssetKind returns the kind for an extension without its leading dot.
func ParseAssetKind(ext string) (AssetKind, bool) {
	k := AssetKind(ext)
	_, ok := contentTypes[k]
	return k, ok
}

// ContentType returns the HTTP Content-Type for the kind.
func (k AssetKind) ContentType() string {
	if ct, ok := contentTypes[k]; ok {
		return ct
	}
	return "text/plain; charset=utf-8"
}

// String returns the extension of the kind.
func (k AssetKind) String() string {
	return string(k)
}

// AssetResult is the text produced by executing an asset module.
// Results are owned by the asset cache and must not be mutated.
type AssetResult struct {
	Fingerprint Fingerprint
	Kind        AssetKind
	Text        string
	ProducedAt  time.Time
}
