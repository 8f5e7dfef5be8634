package app

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/mfridman/clikit"
	"github.com/mfridman/clikit/pkg/complete"
)

// Run is the main entry point for a program: it constructs an application, loads commands for
// argv, executes it, and writes the result in the session's output format.
//
// An explicit help request prints usage to stdout and returns nil. Selecting a command group
// without a subcommand prints its usage to stderr and returns the error.
func Run(ctx context.Context, argv []string, opts *Options) error {
	opts = checkAndSetOptions(opts)
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	if err := a.LoadCommands(ctx, argv); err != nil {
		if errors.Is(err, complete.ErrCompleted) {
			return nil
		}
		return err
	}
	result, err := a.Execute(ctx, argv)
	if err != nil {
		var cliErr *cli.Error
		if errors.As(err, &cliErr) {
			switch cliErr.Code() {
			case cli.ErrShowHelp:
				fmt.Fprintln(opts.Stdout, cli.DefaultUsage(cliErr.Command()))
				return nil
			case cli.ErrNoCommand:
				fmt.Fprintln(opts.Stderr, cli.DefaultUsage(cliErr.Command()))
			}
		}
		return err
	}
	return a.Session.OutputFormat.Write(opts.Stdout, result)
}
