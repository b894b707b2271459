package execpass

import (
	"bytes"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var (
	packageRe = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z_$][\w$]*(?:\s*\.\s*[A-Za-z_$][\w$]*)*)\s*;?`)
	declRe    = regexp.MustCompile(`(?:^|[^.\w$@])(?:@interface|class|interface|enum|trait|record)\s+([A-Za-z_$][\w$]*)`)

	// Top-level text that never makes a file a script.
	importRe     = regexp.MustCompile(`(?m)^\s*import\s+[^\n;]*;?`)
	annotationRe = regexp.MustCompile(`@[A-Za-z_$][\w$.]*(?:\s*\([^)]*\))?`)
	modifierRe   = regexp.MustCompile(`\b(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\b|;`)
)

// ScanTopLevel returns the fully-qualified names of the classes declared at
// the top level of a Groovy or Java source file, in the order the compiler
// reports them.
//
// A Groovy file with statements or methods outside any type declaration also
// compiles to a script class named after the file; it comes first. A file
// that declares no type at all is always a script.
func ScanTopLevel(src []byte, fileName string) []string {
	code := blankCommentsAndStrings(src)
	top := topLevelOnly(code)

	pkg := ""
	if m := packageRe.FindSubmatch(code); m != nil {
		pkg = strings.Join(strings.Fields(string(m[1])), "")
	}

	var names []string
	rest := removeMatches(slices.Clone(top), packageRe, importRe)
	for _, loc := range declRe.FindAllSubmatchIndex(top, -1) {
		names = append(names, qualify(pkg, string(top[loc[2]:loc[3]])))
		// The header runs up to the body brace, which topLevelOnly blanked.
		end := len(code)
		if k := bytes.IndexByte(code[loc[0]:], '{'); k >= 0 {
			end = loc[0] + k
		}
		blankRange(rest, loc[0], end)
	}
	rest = removeMatches(rest, annotationRe, modifierRe)

	script := qualify(pkg, nameWithoutExtension(fileName))
	switch {
	case len(names) == 0:
		names = []string{script}
	case isGroovy(fileName) && len(bytes.TrimSpace(rest)) > 0 && !slices.Contains(names, script):
		names = append([]string{script}, names...)
	}
	return names
}

func isGroovy(fileName string) bool {
	return !strings.EqualFold(filepath.Ext(fileName), ".java")
}

// removeMatches blanks every match of res in b, in place.
func removeMatches(b []byte, res ...*regexp.Regexp) []byte {
	for _, re := range res {
		for _, loc := range re.FindAllIndex(b, -1) {
			blankRange(b, loc[0], loc[1])
		}
	}
	return b
}

func blankRange(b []byte, from, to int) {
	for k := from; k < to && k < len(b); k++ {
		if b[k] != '\n' {
			b[k] = ' '
		}
	}
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func nameWithoutExtension(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// blankCommentsAndStrings returns a copy of src with comments and string
// literals, slashy ones included, replaced by spaces. Newlines are kept so
// line anchors still work, and so is the closing delimiter of a literal so a
// slash after it still reads as division.
func blankCommentsAndStrings(src []byte) []byte {
	out := slices.Clone(src)
	blank := func(from, to int) { blankRange(out, from, to) }
	blankLiteral := func(from, to int) {
		if to-1 > from && to <= len(src) && strings.IndexByte("\"'/$", src[to-1]) >= 0 {
			to--
		}
		blankRange(out, from, to)
	}

	for i := 0; i < len(src); {
		switch {
		case hasPrefixAt(src, i, "//"):
			end := indexFrom(src, i, "\n")
			blank(i, end)
			i = end
		case hasPrefixAt(src, i, "/*"):
			end := indexFrom(src, i+2, "*/") + 2
			blank(i, end)
			i = end
		case hasPrefixAt(src, i, `"""`), hasPrefixAt(src, i, "'''"):
			delim := string(src[i : i+3])
			end := indexFrom(src, i+3, delim) + 3
			blankLiteral(i, end)
			i = end
		case src[i] == '"' || src[i] == '\'':
			end := skipQuoted(src, i)
			blankLiteral(i, end)
			i = end
		case hasPrefixAt(src, i, "$/") && opensSlashy(out, i):
			end := indexFrom(src, i+2, "/$") + 2
			blankLiteral(i, end)
			i = end
		case src[i] == '/' && opensSlashy(out, i):
			end := skipSlashy(src, i)
			blankLiteral(i, end)
			i = end
		default:
			i++
		}
	}
	return out
}

// topLevelOnly blanks everything enclosed in braces.
func topLevelOnly(code []byte) []byte {
	out := make([]byte, len(code))
	depth := 0
	for i, c := range code {
		switch {
		case c == '{':
			depth++
			out[i] = ' '
		case c == '}':
			if depth > 0 {
				depth--
			}
			out[i] = ' '
		case depth > 0 && c != '\n':
			out[i] = ' '
		default:
			out[i] = c
		}
	}
	return out
}

func skipQuoted(src []byte, start int) int {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			// Unterminated; stop at the line end like the compiler would.
			return i
		}
	}
	return len(src)
}

// opensSlashy reports whether a slash at i starts a slashy string rather
// than a division: the previous code character must be an operator or
// opening delimiter after which no operand has appeared yet.
func opensSlashy(code []byte, i int) bool {
	for k := i - 1; k >= 0; k-- {
		switch c := code[k]; c {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return strings.IndexByte("~=(,[:!&|?;{", c) >= 0
		}
	}
	return true
}

// skipSlashy returns the index just past the slashy string starting at start.
// Only a backslash before the closing slash escapes it.
func skipSlashy(src []byte, start int) int {
	for i := start + 1; i < len(src); i++ {
		switch {
		case src[i] == '\\' && i+1 < len(src) && src[i+1] == '/':
			i++
		case src[i] == '/':
			return i + 1
		}
	}
	return len(src)
}

func hasPrefixAt(src []byte, i int, prefix string) bool {
	return len(src)-i >= len(prefix) && string(src[i:i+len(prefix)]) == prefix
}

// indexFrom returns the index of sep at or after from, or len(src)-len(sep)
// clamped so callers adding len(sep) land on len(src).
func indexFrom(src []byte, from int, sep string) int {
	if from > len(src) {
		return len(src)
	}
	if k := strings.Index(string(src[from:]), sep); k >= 0 {
		return from + k
	}
	if sep == "\n" {
		return len(src)
	}
	return len(src) - len(sep)
}
