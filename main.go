package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/readworld/internal/cli"
	"github.com/mrlokans/readworld/internal/config"
	"github.com/mrlokans/readworld/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "export-annotations":
		cmd = cli.NewExportAnnotationsCommand()
	case "show-state":
		cmd = cli.NewShowStateCommand()
	case "version":
		fmt.Printf("readworld %s (%s)\n", Version, Commit)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve                Start the HTTP server (default)\n")
	fmt.Fprintf(os.Stderr, "  export-annotations   Export highlights and notes to markdown\n")
	fmt.Fprintf(os.Stderr, "  show-state           Print the stored reading state as JSON\n")
	fmt.Fprintf(os.Stderr, "  version              Print version information\n")
}
