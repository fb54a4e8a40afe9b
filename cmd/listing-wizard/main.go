// Command listing-wizard drives the property and apartment wizards from the
// terminal: it lists steps, validates and assembles draft files, submits
// them and reconciles partial submissions.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string   `short:"c" help:"YAML config file." type:"path"`
	EnvFile  []string `name:"env-file" help:"Dotenv files read before the environment." type:"path"`
	LogLevel string   `name:"log-level" help:"Override the configured log level."`
	LogJSON  bool     `name:"log-json" help:"Write JSON log lines."`
}

type CLI struct {
	Globals

	Steps     StepsCmd     `cmd:"" help:"List the steps of a wizard."`
	Validate  ValidateCmd  `cmd:"" help:"Validate a draft file against every active step."`
	Payload   PayloadCmd   `cmd:"" help:"Print the request a draft file would submit."`
	Submit    SubmitCmd    `cmd:"" help:"Submit a draft file to the API."`
	Reconcile ReconcileCmd `cmd:"" help:"Inspect and retry partial submissions."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command. lookup replaces the
// process environment when set.
func run(ctx context.Context, args []string, out, logOut io.Writer, lookup func(string) (string, bool)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("listing-wizard"),
		kong.Description("Validate, assemble and submit listing wizard drafts."),
		kong.Writers(out, out),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cli.Globals, out, logOut, lookup)
	if err != nil {
		return err
	}
	return kctx.Run(a)
}
