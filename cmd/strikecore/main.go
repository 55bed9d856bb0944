// Strikecore is a deterministic, data-driven combat simulation engine.
// Usage: strikecore [--version] [--plain] [--script <file>] [--trace]
// [--config <file>] [--listen <addr>] [--archive <dir>] <content_directory>
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/nmoreau/strikecore/cli"
	"github.com/nmoreau/strikecore/engine"
	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/feed"
	"github.com/nmoreau/strikecore/loader"
	"github.com/nmoreau/strikecore/tui"
	"github.com/nmoreau/strikecore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	var contentDir string
	var scriptFile string
	var configFile string
	var listenAddr string
	var archiveDir string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("strikecore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configFile = args[i]
		case "--listen":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--listen requires an address\n")
				os.Exit(1)
			}
			i++
			listenAddr = args[i]
		case "--archive":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--archive requires a directory\n")
				os.Exit(1)
			}
			i++
			archiveDir = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	if contentDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: strikecore [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--listen <addr>] [--archive <dir>] <content_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua combat content.
	defs, err := loader.Load(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	cfg := bus.DefaultConfig()
	if configFile != "" {
		cfg, err = bus.LoadConfig(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	eng := engine.New(defs, cfg)

	allKinds := []types.EventKind{
		types.EventActionStarted,
		types.EventActionCompleted,
		types.EventDamageDealt,
		types.EventEffectApplied,
		types.EventEffectRemoved,
		types.EventStatusChanged,
		types.EventCustom,
		types.EventActionError,
	}

	// Optional live replication over websocket.
	if listenAddr != "" {
		srv := feed.NewServer(log.New(os.Stderr, "", log.LstdFlags))
		defer srv.Close()
		eng.Bus.Subscribe(srv, allKinds...)
		mux := http.NewServeMux()
		mux.Handle("/feed", srv.Handler())
		go func() {
			if err := http.ListenAndServe(listenAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "Feed server error: %v\n", err)
			}
		}()
		fmt.Fprintf(os.Stderr, "[feed] listening on ws://%s/feed\n", listenAddr)
	}

	// Optional compressed event archive.
	if archiveDir != "" {
		arc := feed.NewArchive(archiveDir, "events")
		defer arc.Close()
		eng.Bus.Subscribe(arc, allKinds...)
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, defs)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, defs)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(eng, defs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
