package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of the --ui flag.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on", "tui":
		return uiModeOn, nil
	case "off", "plain":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// progressView is how `unitc build` shows pass progress.
type progressView uint8

const (
	progressNone progressView = iota // machine-readable or quiet output
	progressLog                      // one line per finished pass on stderr
	progressTUI                      // live bubbletea view on stdout
)

// selectProgressView picks the progress view for a build. Only the pretty
// format reports progress at all, since json, short and sarif output must
// stay parseable. In auto mode the live view needs stdout to be a terminal.
func selectProgressView(mode uiMode, format outputFormat, quiet bool) progressView {
	if format != formatPretty || quiet {
		return progressNone
	}
	switch mode {
	case uiModeOn:
		return progressTUI
	case uiModeOff:
		return progressLog
	default:
		if isTerminal(os.Stdout) {
			return progressTUI
		}
		return progressLog
	}
}
