package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/readworld/internal/config"
	"github.com/mrlokans/readworld/internal/entrypoint"
)

// ShowStateCommand prints the persisted reading state as JSON.
type ShowStateCommand struct {
	DatabasePath string
	Compact      bool

	out io.Writer
}

func NewShowStateCommand() *ShowStateCommand {
	return &ShowStateCommand{out: os.Stdout}
}

func (cmd *ShowStateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("show-state", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Compact, "compact", false, "Print JSON on a single line")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s show-state [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the stored reading state after monthly rollover.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ShowStateCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath

	app, err := entrypoint.Build(cfg, false)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	out := struct {
		UserID     string `json:"user_id"`
		StorageKey string `json:"storage_key"`
		Degraded   bool   `json:"storage_degraded"`
		State      any    `json:"state"`
	}{
		UserID:     app.Store.UserID(ctx),
		StorageKey: app.Store.Key(ctx),
		Degraded:   app.Records.Degraded(),
		State:      app.Store.Snapshot(),
	}

	enc := json.NewEncoder(cmd.out)
	if !cmd.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
