package diagfmt

import (
	"io"

	"unitc/internal/diag"
)

// Short writes one line per diagnostic, the format golden tests compare.
func Short(w io.Writer, bag *diag.Bag, baseDir string) error {
	out := diag.FormatShortDiagnostics(bag.Items(), baseDir)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
