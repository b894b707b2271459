// Package attrib maps compiled class names back to the source files that
// produced them, without reading any bytecode.
//
// Nested, inner and synthetic classes are named after their enclosing
// top-level class plus a "$"-delimited suffix. '$' sorts below letters, digits
// and '.', so in lexicographic order every class of a top-level X (X itself
// and all X$... variants) forms one contiguous run starting at X. Resolve
// sorts the class names once and consumes those runs with a cursor that only
// moves forward.
package attrib

import (
	"iter"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// ClassExt is appended to every emitted class path.
const ClassExt = ".class"

// SourceUnit is one source file as reported by the front-end, with the
// top-level classes it declares in declaration order.
type SourceUnit struct {
	Path     string
	TopLevel []string
}

// OutputItem links one emitted class file to its source file.
type OutputItem struct {
	OutputRoot string
	OutputPath string
	SourceFile string
}

// Result is the outcome of one attribution run.
type Result struct {
	Items []OutputItem
	// Unattributed holds classes no top-level name claimed, sorted.
	Unattributed []string
}

type claim struct {
	name  string
	unit  int
	start int
	end   int
}

// Resolve attributes classes to the units that declare them.
//
// Items come out in the order units are reported: per unit, per top-level
// name, classes in sorted order. A top-level name that produced no classes
// yields no items. A class is attributed at most once; when two units claim
// the same top-level name the earlier-reported one wins. When one claimed
// name extends another with a "$" suffix (X and X$Y, legal since '$' is an
// identifier character), classes under X$Y go to X$Y and the rest to X.
func Resolve(outputRoot string, classes []string, units iter.Seq[SourceUnit]) Result {
	root := filepath.ToSlash(outputRoot)

	sorted := slices.Clone(classes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var (
		files  []string
		claims []claim
	)
	if units != nil {
		for u := range units {
			for _, name := range u.TopLevel {
				claims = append(claims, claim{name: name, unit: len(files)})
			}
			files = append(files, u.Path)
		}
	}

	// Visiting claims in name order keeps the cursor monotonic whatever order
	// the front-end reported files in. SliceStable keeps report order for
	// duplicate names, so the first reporter wins.
	byName := make([]int, len(claims))
	for i := range byName {
		byName[i] = i
	}
	sort.SliceStable(byName, func(i, j int) bool {
		return claims[byName[i]].name < claims[byName[j]].name
	})

	owner := make([]int, len(sorted))
	for i := range owner {
		owner[i] = -1
	}
	cursor := 0
	for k, ci := range byName {
		c := &claims[ci]
		nested := c.name + "$"
		longer := nestedClaims(claims, byName[k+1:], c.name)

		start := cursor + sort.SearchStrings(sorted[cursor:], c.name)
		end, next := start, -1
		for end < len(sorted) && (sorted[end] == c.name || strings.HasPrefix(sorted[end], nested)) {
			switch {
			case owner[end] >= 0:
			case ownedByAny(sorted[end], longer):
				// Left for the longer claim, which is visited next.
				if next < 0 {
					next = end
				}
			default:
				owner[end] = ci
			}
			end++
		}
		c.start, c.end = start, end
		if next < 0 {
			next = end
		}
		cursor = max(cursor, next)
	}

	res := Result{}
	total := 0
	for _, o := range owner {
		if o >= 0 {
			total++
		}
	}
	if total > 0 {
		res.Items = make([]OutputItem, 0, total)
	}
	for ci, c := range claims {
		for k := c.start; k < c.end; k++ {
			if owner[k] != ci {
				continue
			}
			res.Items = append(res.Items, OutputItem{
				OutputRoot: root,
				OutputPath: ClassPath(root, sorted[k]),
				SourceFile: files[c.unit],
			})
		}
	}
	for i, class := range sorted {
		if owner[i] < 0 {
			res.Unattributed = append(res.Unattributed, class)
		}
	}
	return res
}

// nestedClaims returns the claimed names that extend name with a "$" suffix.
// rest is in name order, and such names follow name and its duplicates
// directly.
func nestedClaims(claims []claim, rest []int, name string) []string {
	var out []string
	nested := name + "$"
	for _, ci := range rest {
		n := claims[ci].name
		if n == name {
			continue
		}
		if !strings.HasPrefix(n, nested) {
			break
		}
		out = append(out, n)
	}
	return out
}

func ownedByAny(class string, names []string) bool {
	for _, n := range names {
		if class == n || strings.HasPrefix(class, n+"$") {
			return true
		}
	}
	return false
}

// ClassPath returns the class file path for a fully-qualified class name.
func ClassPath(root, class string) string {
	return root + "/" + strings.ReplaceAll(class, ".", "/") + ClassExt
}

// Units adapts a slice to the sequence Resolve consumes.
func Units(units ...SourceUnit) iter.Seq[SourceUnit] {
	return slices.Values(units)
}
