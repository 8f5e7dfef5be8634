// Package verbose is an extension adding --verbose and --debug global flags, which raise the
// session logger's level for the rest of the invocation.
//
// Install it for every application in the process with:
//
//	func init() { app.RegisterExtension(verbose.New(os.Stderr)) }
package verbose

import (
	"context"
	"flag"
	"io"
	"log/slog"

	cli "github.com/mfridman/clikit"
	"github.com/mfridman/clikit/pkg/app"
	"github.com/mfridman/clikit/pkg/event"
)

const (
	verboseKey = "_log_verbose"
	debugKey   = "_log_debug"
)

// Extension swaps the session logger for a text logger at info level with --verbose, or debug
// level with --debug.
type Extension struct {
	w io.Writer
}

var _ app.Extension = (*Extension)(nil)

// New returns an extension writing log output to w.
func New(w io.Writer) *Extension {
	return &Extension{w: w}
}

func (e *Extension) Register(a *app.Application) error {
	event.OnGlobalParserCreated(a.Session, func(_ context.Context, parser *cli.Command) error {
		if parser.Flags == nil {
			parser.Flags = flag.NewFlagSet(parser.Name, flag.ContinueOnError)
		}
		parser.Flags.Bool("verbose", false, "increase logging verbosity")
		parser.Flags.Bool("debug", false, "show all debug logs")
		parser.FlagsMetadata = append(parser.FlagsMetadata,
			cli.FlagMetadata{Name: "verbose", Dest: verboseKey},
			cli.FlagMetadata{Name: "debug", Dest: debugKey},
		)
		return nil
	})
	event.OnCommandParserParsed(a.Session, func(ctx context.Context, args *cli.Arguments) error {
		level, ok := levelFor(args)
		if !ok {
			return nil
		}
		handler := slog.NewTextHandler(e.w, &slog.HandlerOptions{Level: level})
		a.Session.Log = slog.New(handler).With(slog.String("logger", a.Parser.Name))
		a.Session.Log.DebugContext(ctx, "debug logging enabled")
		return nil
	})
	return nil
}

func levelFor(args *cli.Arguments) (slog.Level, bool) {
	debug, _ := args.Internal[debugKey].(bool)
	verbose, _ := args.Internal[verboseKey].(bool)
	delete(args.Internal, debugKey)
	delete(args.Internal, verboseKey)
	switch {
	case debug:
		return slog.LevelDebug, true
	case verbose:
		return slog.LevelInfo, true
	}
	return 0, false
}
