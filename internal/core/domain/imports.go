package domain

import (
	"regexp"
	"slices"
	"strings"
)

var (
	staticImportRe  = regexp.MustCompile(`(?m)(?:^|;)[ \t]*import\s*(?:[\w$*{}\s,]+?\s*from\s*)?["']([^"'\n]+)["']`)
	reExportRe      = regexp.MustCompile(`(?m)(?:^|;)[ \t]*export\s*(?:\*(?:\s*as\s+[\w$]+)?|\{[^}]*\})\s*from\s*["']([^"'\n]+)["']`)
	requireRe       = regexp.MustCompile(`\brequire\s*\(\s*["']([^"'\n]+)["']\s*\)`)
	dynamicImportRe = regexp.MustCompile(`\bimport\s*\(\s*["']([^"'\n]+)["']\s*\)`)
)

// ScanImports returns the import specifiers of a module in order of first
// appearance. Static imports, re-exports, require calls and dynamic imports
// with a literal specifier are recognized; comments and template literal
// bodies are ignored.
func ScanImports(src string) []string {
	masked := MaskSource(src)

	type hit struct {
		pos  int
		spec string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{staticImportRe, reExportRe, requireRe, dynamicImportRe} {
		for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
			hits = append(hits, hit{pos: m[2], spec: masked[m[2]:m[3]]})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int { return a.pos - b.pos })

	seen := make(map[string]bool, len(hits))
	specs := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.spec] {
			continue
		}
		seen[h.spec] = true
		specs = append(specs, h.spec)
	}
	return specs
}

// MaskSource returns a copy of src of the same length in which comments and
// the literal parts of template strings are replaced by spaces. Newlines and
// ordinary string literals are kept, so offsets into the result are valid
// offsets into src.
//
//nolint:cyclop // single-pass lexer
func MaskSource(src string) string {
	out := []byte(src)
	n := len(src)
	blank := func(from, to int) {
		to = min(to, n)
		for k := from; k < to; k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}

	var depth []int
	inTemplate := false
	i := 0
	for i < n {
		if inTemplate {
			j := i
			for j < n {
				if src[j] == '\\' {
					j += 2
					continue
				}
				if src[j] == '`' || (src[j] == '$' && j+1 < n && src[j+1] == '{') {
					break
				}
				j++
			}
			blank(i, j)
			if j >= n {
				break
			}
			inTemplate = false
			if src[j] == '`' {
				i = j + 1
				continue
			}
			depth = append(depth, 0)
			i = j + 2
			continue
		}

		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			end := n
			if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
				end = i + j
			}
			blank(i, end)
			i = end
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := n
			if j := strings.Index(src[i+2:], "*/"); j >= 0 {
				end = i + 2 + j + 2
			}
			blank(i, end)
			i = end
		case c == '\'' || c == '"':
			j := i + 1
			for j < n && src[j] != c && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			i = j + 1
		case c == '`':
			inTemplate = true
			i++
		case c == '{':
			if len(depth) > 0 {
				depth[len(depth)-1]++
			}
			i++
		case c == '}':
			if len(depth) > 0 {
				top := len(depth) - 1
				if depth[top] == 0 {
					depth = depth[:top]
					inTemplate = true
				} else {
					depth[top]--
				}
			}
			i++
		default:
			i++
		}
	}
	return string(out)
}
