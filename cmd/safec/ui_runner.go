package main

import (
	"cmp"
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"safec/internal/buildpipeline"
	"safec/internal/ui"
)

// runBuildWithUI builds in the background while the progress view reads
// its events on stderr. The build closes the channel when it returns.
func runBuildWithUI(ctx context.Context, title string, files []string, req *buildpipeline.BuildRequest) (buildpipeline.BuildResult, error) {
	events := make(chan buildpipeline.Event, 256)
	withUI := *req
	withUI.Progress = buildpipeline.ChannelSink{Ch: events}

	var (
		res      buildpipeline.BuildResult
		buildErr error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(events)
		res, buildErr = buildpipeline.Build(ctx, &withUI)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	if _, uiErr := program.Run(); uiErr != nil {
		// вид упал: дочитываем события, иначе сборка встанет на отправке
		for range events {
		}
		<-finished
		return res, cmp.Or(buildErr, uiErr)
	}
	<-finished
	return res, buildErr
}
