package resolver

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/zerr"
)

// packageJSON holds the entry point fields of a package manifest.
type packageJSON struct {
	Exports json.RawMessage `json:"exports"`
	Module  string          `json:"module"`
	Main    string          `json:"main"`
}

// resolvePackage finds a bare specifier in the nearest node_modules directory
// at or above dir.
func (r *Resolver) resolvePackage(spec, dir string) (string, error) {
	name, subpath := splitPackage(spec)
	if name == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, "malformed package specifier"), "specifier", spec)
	}

	for current := dir; ; {
		pkgDir := filepath.Join(current, domain.NodeModulesDirName, filepath.FromSlash(name))
		if info, err := os.Stat(pkgDir); err == nil && info.IsDir() {
			if subpath != "" {
				return filepath.Join(pkgDir, filepath.FromSlash(subpath)), nil
			}
			return packageEntry(pkgDir)
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", zerr.With(zerr.Wrap(domain.ErrNotFound, "package not found in node_modules"), "specifier", spec)
}

// splitPackage splits "pkg/sub" and "@scope/pkg/sub" into name and subpath.
func splitPackage(spec string) (name, subpath string) {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", ""
		}
		name = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = parts[2]
		}
		return name, subpath
	}
	name, subpath, _ = strings.Cut(spec, "/")
	return name, subpath
}

// packageEntry picks the module entry of a package: exports, then module,
// then main, then index.js.
func packageEntry(pkgDir string) (string, error) {
	manifest := filepath.Join(pkgDir, "package.json")
	// #nosec G304 -- manifest lives inside a node_modules package directory
	data, err := os.ReadFile(manifest)
	if errors.Is(err, fs.ErrNotExist) {
		return filepath.Join(pkgDir, "index.js"), nil
	}
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrNotFound, err.Error()), "path", manifest)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, "malformed package.json"), "path", manifest)
	}

	for _, candidate := range []string{exportsEntry(pkg.Exports), pkg.Module, pkg.Main, "index.js"} {
		if candidate != "" {
			return filepath.Join(pkgDir, filepath.FromSlash(candidate)), nil
		}
	}
	return filepath.Join(pkgDir, "index.js"), nil
}

// exportsEntry reads the root export: a string, or "." mapping to a string
// or to an object with "import" or "default".
func exportsEntry(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var direct string
	if json.Unmarshal(raw, &direct) == nil {
		return direct
	}

	var conditions map[string]json.RawMessage
	if json.Unmarshal(raw, &conditions) != nil {
		return ""
	}
	if root, ok := conditions["."]; ok {
		return exportsEntry(root)
	}
	for _, key := range []string{"import", "default"} {
		if v, ok := conditions[key]; ok {
			if entry := exportsEntry(v); entry != "" {
				return entry
			}
		}
	}
	return ""
}
