package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"unitc/internal/diag"
)

// Pretty writes diagnostics in arrival order, one block per diagnostic:
//
//	<path>:<line>:<col>: <severity>: <message>
//
// The location prefix is omitted when the diagnostic has none. Colors follow
// opts.Color; fatih/color's global NoColor switch is left untouched.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}

	pal := newPalette(opts.Color)
	for _, d := range items[:limit] {
		if _, err := fmt.Fprintln(w, prettyLine(d, pal, opts)); err != nil {
			return err
		}
	}
	if hidden := len(items) - limit + bag.Dropped(); hidden > 0 {
		if _, err := fmt.Fprintln(w, pal.dim.Sprintf("... %d more diagnostics not shown", hidden)); err != nil {
			return err
		}
	}
	if opts.Summary {
		if _, err := fmt.Fprintln(w, summaryLine(bag, pal)); err != nil {
			return err
		}
	}
	return nil
}

func prettyLine(d diag.Diagnostic, pal palette, opts PrettyOpts) string {
	var b strings.Builder
	if d.HasLocation() {
		loc := d
		loc.Location = formatPath(d.Location, opts.PathMode, opts.BaseDir)
		b.WriteString(pal.path.Sprint(diag.Where(loc, "")))
		b.WriteString(": ")
	}
	b.WriteString(pal.severity(d.Severity).Sprint(strings.ToLower(d.Severity.String())))
	b.WriteString(": ")

	msg := diag.SanitizeMessage(d.Message)
	if opts.Width > 0 {
		msg = runewidth.Truncate(msg, int(opts.Width), "...")
	}
	b.WriteString(msg)
	return b.String()
}

// summaryLine returns the closing "N errors, M warnings" line.
func summaryLine(bag *diag.Bag, pal palette) string {
	errs := bag.Count(diag.SevError)
	warns := bag.Count(diag.SevWarning)
	text := fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
	if errs > 0 {
		return pal.err.Sprint(text)
	}
	return pal.ok.Sprint(text)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

type palette struct {
	err, warn, info, path, dim, ok *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:  mk(color.FgRed, color.Bold),
		warn: mk(color.FgYellow, color.Bold),
		info: mk(color.FgCyan),
		path: mk(color.Bold),
		dim:  mk(color.Faint),
		ok:   mk(color.FgGreen),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}
