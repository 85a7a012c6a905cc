// ABOUTME: Entry point for the soundscape application
// ABOUTME: Handles command-line parsing and routing to CLI or TUI modes

// Package main provides the entry point for soundscape, an ambient sound
// mixer built around playlists, per-playlist volumes, and named presets.
package main

import (
	"flag"
	"fmt"
	"log"
)

func main() {
	flag.Usage = func() {
		fmt.Println("Usage: soundscape [flags]")
		fmt.Println("\nRuns the interactive mixer by default.")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "", "path to the config file (default: ./soundscape.toml or ~/.config/soundscape/config.toml)")
	list := flag.Bool("list", false, "print the playlist library and presets, then exit")
	debug := flag.Bool("debug", false, "enable debug logging to soundscape-debug.log")
	flag.Parse()

	opts := RunOptions{
		ConfigPath: *configPath,
		DebugLog:   *debug,
	}

	if *debug {
		if err := SetupDebugLog("soundscape-debug.log"); err != nil {
			log.Fatalf("Failed to setup debug log: %v", err)
		}
	}

	if *list {
		if err := RunCLI(opts); err != nil {
			log.Fatalf("CLI error: %v", err)
		}

		return
	}

	if err := RunTUI(opts); err != nil {
		log.Fatalf("TUI error: %v", err)
	}
}
