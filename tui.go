// ABOUTME: TUI mode launcher
// ABOUTME: Adapts the wired application core to the tui package's dependencies

package main

import (
	"context"

	"soundscape/media"
	"soundscape/tui"
)

// RunTUI wires the application core into the interactive terminal UI and
// blocks until the user quits.
func RunTUI(opts RunOptions) error {
	app, err := InitializeApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return tui.Run(ctx, tui.Options{DebugLog: opts.DebugLog}, tui.Deps{
		Lib:        app.Store,
		State:      app.State,
		Controller: app.Controller,
		Wizard:     app.Wizard,
		Messenger:  app.Messenger,
		Grants:     app.Grants,
		NameFor:    media.DisplayName,
		Debugf:     debugf,
	})
}
