// ABOUTME: CLI mode implementation for non-interactive library inspection
// ABOUTME: Prints playlists, presets, and the active preset state as tables

package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"
)

// RunCLI prints the playlist library and the saved presets.
func RunCLI(opts RunOptions) error {
	app, err := InitializeApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	playlists, err := app.Store.Playlists()
	if err != nil {
		return fmt.Errorf("loading playlists: %w", err)
	}

	fmt.Println("Playlists:")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Active\tName\tVolume\tTracks\tShuffle"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	for _, p := range playlists {
		active := ""
		if p.Active {
			active = "x"
		}

		shuffle := ""
		if p.Shuffle {
			shuffle = "x"
		}

		flags := ""
		if p.HasError {
			flags = "!"
		}

		if _, err := fmt.Fprintf(w, "%s\t%s%s\t%.0f%%\t%d\t%s\n",
			active,
			truncate(p.Name, 40),
			flags,
			p.Volume*100,
			p.TrackCount,
			shuffle,
		); err != nil {
			log.Printf("Warning: failed to write playlist %q: %v", p.Name, err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	presets, err := app.Store.Presets()
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}

	fmt.Println("\nPresets:")

	active := app.Prefs.ActivePresetName()

	for _, p := range presets {
		marker := " "
		if p.Name == active {
			marker = "*"
		}

		fmt.Printf("%s %s\n", marker, p.Name)
	}

	if len(presets) == 0 {
		fmt.Println("  (none)")
	}

	return nil
}
