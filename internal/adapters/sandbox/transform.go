package sandbox

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/spool/internal/core/domain"
)

// wrapperHead opens the function every module body is evaluated in. The body
// is async so top-level await works.
const wrapperHead = "(async function (exports, require, module, __filename, __dirname, __import, readFile, __spool) {"

var (
	importFromRe    = regexp.MustCompile(`(?m)(?:^|;)[ \t]*(import\b\s*([\w$*{}\s,]+?)\s*from\s*["']([^"'\n]+)["'])`)
	importBareRe    = regexp.MustCompile(`(?m)(?:^|;)[ \t]*(import\s*["']([^"'\n]+)["'])`)
	exportFromRe    = regexp.MustCompile(`(?m)(?:^|;)[ \t]*(export\s*(\*(?:\s*as\s+[\w$]+)?|\{[^}]*\})\s*from\s*["']([^"'\n]+)["'])`)
	exportListRe    = regexp.MustCompile(`(?m)(?:^|;)[ \t]*(export\s*\{([^}]*)\})`)
	exportDefaultRe = regexp.MustCompile(`(?m)(?:^|;)[ \t]*(export\s+default\b\s*)(?:(?:async\s+)?function\b\s*\*?\s*([\w$]+)|class\s+([\w$]+))?`)
	exportDeclRe    = regexp.MustCompile(`(?m)(?:^|;)[ \t]*(export\s+)(?:(?:async\s+)?function\b\s*\*?\s*([\w$]+)|class\s+([\w$]+)|(?:const|let|var)\s+)`)
	dynamicImportRe = regexp.MustCompile(`(?:^|[^\w$.])(import)\s*\(`)
	fromFollowsRe   = regexp.MustCompile(`^\s*from\b`)
	identRe         = regexp.MustCompile(`^[A-Za-z_$][\w$]*`)
)

type edit struct {
	start, end int
	text       string
}

type transformer struct {
	src    string
	masked string
	edits  []edit
	header []string
	temps  int
	esm    bool
}

// wrapModule rewrites the ES module syntax of src into a CommonJS-shaped body
// and wraps it in the module function. Exported bindings become getters on
// exports, so they stay live. The wrapper opens on the first line of the body,
// so line numbers are kept.
func wrapModule(src string) string {
	t := &transformer{src: src, masked: domain.MaskSource(src)}
	t.imports()
	t.exports()
	t.dynamicImports()

	var b strings.Builder
	b.WriteString(wrapperHead)
	if t.esm {
		b.WriteString(`Object.defineProperty(exports, "__esModule", { value: true });`)
	}
	for _, h := range t.header {
		b.WriteString(h)
	}
	b.WriteString(t.apply())
	b.WriteString("\n})")
	return b.String()
}

func (t *transformer) temp() string {
	t.temps++
	return fmt.Sprintf("__spool_m%d", t.temps)
}

func (t *transformer) replace(start, end int, text string) {
	t.edits = append(t.edits, edit{start: start, end: end, text: text})
}

// getter adds a live export binding for name that evaluates expr.
func (t *transformer) getter(name, expr string) {
	t.header = append(t.header, fmt.Sprintf(
		"Object.defineProperty(exports, %q, { enumerable: true, get: function () { return %s; } });", name, expr))
}

func (t *transformer) imports() {
	for _, m := range importFromRe.FindAllStringSubmatchIndex(t.masked, -1) {
		t.esm = true
		clause := t.masked[m[4]:m[5]]
		spec := t.masked[m[6]:m[7]]
		t.replace(m[2], m[3], t.importStatement(clause, spec))
	}
	for _, m := range importBareRe.FindAllStringSubmatchIndex(t.masked, -1) {
		t.esm = true
		spec := t.masked[m[4]:m[5]]
		t.replace(m[2], m[3], fmt.Sprintf("await __import(%q);", spec))
	}
}

// importStatement renders the binding clause of an import declaration, such as
// `d, { a, b as c }` or `* as ns`, as const declarations.
func (t *transformer) importStatement(clause, spec string) string {
	load := fmt.Sprintf("await __import(%q)", spec)
	def, ns, named := splitImportClause(clause)

	if def == "" && len(named) == 0 && ns != "" {
		return fmt.Sprintf("const %s = %s;", ns, load)
	}

	tmp := t.temp()
	parts := []string{fmt.Sprintf("const %s = %s;", tmp, load)}
	if def != "" {
		parts = append(parts, fmt.Sprintf("const %s = %s.default;", def, tmp))
	}
	if ns != "" {
		parts = append(parts, fmt.Sprintf("const %s = %s;", ns, tmp))
	}
	if len(named) > 0 {
		fields := make([]string, 0, len(named))
		for _, n := range named {
			if n.local == n.remote {
				fields = append(fields, n.local)
				continue
			}
			fields = append(fields, fmt.Sprintf("%s: %s", quoteKey(n.remote), n.local))
		}
		parts = append(parts, fmt.Sprintf("const { %s } = %s;", strings.Join(fields, ", "), tmp))
	}
	return strings.Join(parts, " ")
}

type binding struct {
	remote string
	local  string
}

func splitImportClause(clause string) (def, ns string, named []binding) {
	clause = strings.TrimSpace(clause)
	if open := strings.IndexByte(clause, '{'); open >= 0 {
		closing := strings.LastIndexByte(clause, '}')
		if closing > open {
			named = parseBindings(clause[open+1 : closing])
			clause = clause[:open] + clause[closing+1:]
		}
	}
	for part := range strings.SplitSeq(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			fields := strings.Fields(strings.TrimPrefix(part, "*"))
			if len(fields) == 2 && fields[0] == "as" {
				ns = fields[1]
			}
		default:
			def = part
		}
	}
	return def, ns, named
}

// parseBindings parses `a, b as c` into remote/local pairs.
func parseBindings(list string) []binding {
	var out []binding
	for item := range strings.SplitSeq(list, ",") {
		fields := strings.Fields(item)
		switch {
		case len(fields) == 1:
			out = append(out, binding{remote: fields[0], local: fields[0]})
		case len(fields) == 3 && fields[1] == "as":
			out = append(out, binding{remote: unquote(fields[0]), local: unquote(fields[2])})
		}
	}
	return out
}

func (t *transformer) exports() {
	for _, m := range exportFromRe.FindAllStringSubmatchIndex(t.masked, -1) {
		t.esm = true
		what := t.masked[m[4]:m[5]]
		spec := t.masked[m[6]:m[7]]
		tmp := t.temp()
		stmt := fmt.Sprintf("const %s = await __import(%q);", tmp, spec)

		switch {
		case strings.HasPrefix(what, "{"):
			for _, b := range parseBindings(strings.Trim(what, "{}")) {
				t.getter(b.local, tmp+"["+fmt.Sprintf("%q", b.remote)+"]")
			}
		case strings.Contains(what, "as"):
			fields := strings.Fields(strings.TrimPrefix(what, "*"))
			t.getter(fields[len(fields)-1], tmp)
		default:
			stmt += fmt.Sprintf(" __spool.exportStar(exports, %s);", tmp)
		}
		t.replace(m[2], m[3], stmt)
	}

	for _, m := range exportListRe.FindAllStringSubmatchIndex(t.masked, -1) {
		if fromFollowsRe.MatchString(t.masked[m[3]:]) {
			continue
		}
		t.esm = true
		for _, b := range parseBindings(t.masked[m[4]:m[5]]) {
			t.getter(b.local, b.remote)
		}
		t.replace(m[2], m[3], "")
	}

	for _, m := range exportDefaultRe.FindAllStringSubmatchIndex(t.masked, -1) {
		t.esm = true
		name := submatch(t.masked, m, 2)
		if name == "" {
			name = submatch(t.masked, m, 3)
		}
		if name != "" {
			// Named declarations stay declarations so the name is in scope.
			t.getter("default", name)
			t.replace(m[2], m[3], "")
			continue
		}
		t.replace(m[2], m[3], "exports.default = ")
	}

	for _, m := range exportDeclRe.FindAllStringSubmatchIndex(t.masked, -1) {
		t.esm = true
		t.replace(m[2], m[3], "")
		if name := submatch(t.masked, m, 2); name != "" {
			t.getter(name, name)
			continue
		}
		if name := submatch(t.masked, m, 3); name != "" {
			t.getter(name, name)
			continue
		}
		for _, name := range declaredNames(t.masked, m[1]) {
			t.getter(name, name)
		}
	}
}

func (t *transformer) dynamicImports() {
	for _, m := range dynamicImportRe.FindAllStringSubmatchIndex(t.masked, -1) {
		t.replace(m[2], m[3], "__import")
	}
}

// apply splices the edits into src. Replaced text keeps its newlines so the
// body's line numbers match the module source.
func (t *transformer) apply() string {
	slices.SortFunc(t.edits, func(a, b edit) int { return a.start - b.start })

	var b strings.Builder
	pos := 0
	for _, e := range t.edits {
		if e.start < pos {
			continue
		}
		b.WriteString(t.src[pos:e.start])
		b.WriteString(e.text)
		b.WriteString(strings.Repeat("\n", strings.Count(t.src[e.start:e.end], "\n")))
		pos = e.end
	}
	b.WriteString(t.src[pos:])
	return b.String()
}

// declaredNames returns the names bound by the declarator list of a
// const/let/var statement that starts at pos.
//
//nolint:cyclop // single-pass scanner
func declaredNames(s string, pos int) []string {
	var names []string
	expectName := true
	depth := 0
	for i := pos; i < len(s); {
		c := s[i]
		if expectName {
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				i++
				continue
			}
			if c == '{' || c == '[' {
				end := matching(s, i)
				names = append(names, patternNames(s[i:end])...)
				i = end
			} else if ident := identRe.FindString(s[i:]); ident != "" {
				names = append(names, ident)
				i += len(ident)
			} else {
				return names
			}
			expectName = false
			continue
		}

		switch c {
		case '"', '\'':
			i = skipString(s, i)
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return names
			}
			depth--
		case ',':
			if depth == 0 {
				expectName = true
			}
		case ';':
			if depth == 0 {
				return names
			}
		case '\n':
			if depth == 0 && !continues(s[pos:i]) {
				return names
			}
		}
		i++
	}
	return names
}

// continues reports whether a statement ending in text goes on past the line.
func continues(text string) bool {
	text = strings.TrimRight(text, " \t\r")
	if text == "" {
		return true
	}
	return strings.ContainsRune(",=+-*/%&|^?:<>!(", rune(text[len(text)-1]))
}

// patternNames returns the identifiers bound by a destructuring pattern.
func patternNames(pattern string) []string {
	if len(pattern) < 2 {
		return nil
	}
	var names []string
	for _, element := range splitTopLevel(pattern[1 : len(pattern)-1]) {
		element = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(element), "..."))
		if pattern[0] == '{' {
			if idx := topLevelIndex(element, ':'); idx >= 0 {
				element = strings.TrimSpace(element[idx+1:])
			}
		}
		if idx := topLevelIndex(element, '='); idx >= 0 {
			element = strings.TrimSpace(element[:idx])
		}
		if element == "" {
			continue
		}
		if element[0] == '{' || element[0] == '[' {
			names = append(names, patternNames(element[:matching(element, 0)])...)
			continue
		}
		if ident := identRe.FindString(element); ident != "" {
			names = append(names, ident)
		}
	}
	return names
}

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipString(s, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func topLevelIndex(s string, target byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case target:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matching returns the offset just past the bracket that closes s[open].
func matching(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipString(s, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

// skipString returns the offset just past the string literal at s[i].
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote, '\n':
			return j + 1
		}
	}
	return len(s)
}

func submatch(s string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

func quoteKey(name string) string {
	if identRe.MatchString(name) && identRe.FindString(name) == name {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func unquote(name string) string {
	return strings.Trim(name, `"'`)
}
