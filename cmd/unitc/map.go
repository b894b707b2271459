package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"unitc/internal/outmap"
)

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map [flags] <file>",
		Short: "List the source-to-class map written by build --emit-map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			source, err := cmd.Flags().GetString("source")
			if err != nil {
				return err
			}
			m, err := outmap.Read(args[0])
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "text":
				return renderMapText(cmd.OutOrStdout(), m, source)
			case "json":
				return renderMapJSON(cmd.OutOrStdout(), m, source)
			default:
				return fmt.Errorf("unsupported format %q (must be text or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().String("source", "", "only list classes of this source file")
	return cmd
}

func selectedSources(m *outmap.Map, source string) []string {
	if source != "" {
		return []string{source}
	}
	return m.Sources()
}

func renderMapText(w io.Writer, m *outmap.Map, source string) error {
	for _, src := range selectedSources(m, source) {
		for _, out := range m.Outputs(src) {
			if _, err := fmt.Fprintf(w, "%s -> %s\n", src, out); err != nil {
				return err
			}
		}
	}
	return nil
}

type mapPayload struct {
	Package string              `json:"package"`
	Sources map[string][]string `json:"sources"`
}

func renderMapJSON(w io.Writer, m *outmap.Map, source string) error {
	payload := mapPayload{Package: m.Package, Sources: make(map[string][]string)}
	for _, src := range selectedSources(m, source) {
		if outs := m.Outputs(src); len(outs) > 0 {
			payload.Sources[src] = outs
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
