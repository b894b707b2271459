package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"unitc/internal/attrib"
	"unitc/internal/buildpipeline"
	"unitc/internal/diag"
	"unitc/internal/ui"
)

type compileOutcome struct {
	items []attrib.OutputItem
	err   error
}

// runCompileWithUI runs CompileAll on a goroutine and renders its progress
// events until the build finishes.
func runCompileWithUI(title string, newUnits func(buildpipeline.ProgressSink) (*buildpipeline.Units, error), sink diag.Sink) ([]attrib.OutputItem, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	units, err := newUnits(buildpipeline.ChannelSink{Ch: events})
	if err != nil {
		return nil, err
	}

	go func() {
		items, err := units.CompileAll(sink)
		outcomeCh <- compileOutcome{items: items, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the compile goroutine from blocking on a full channel.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.items, uiErr
	}
	return outcome.items, outcome.err
}
