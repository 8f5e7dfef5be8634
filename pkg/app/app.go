// Package app wires the parser, lifecycle events and command loading into a runnable command line
// application.
//
// Constructing an [Application] fires GlobalParser.Created and CommandParser.Created. Loading
// commands fires CommandParser.Loaded, and executing a command line fires CommandParser.Parsed just
// before the resolved command runs. Extensions subscribe to these events to add global flags or
// inspect parsed arguments.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	cli "github.com/mfridman/clikit"
	"github.com/mfridman/clikit/pkg/complete"
	"github.com/mfridman/clikit/pkg/event"
)

// Options configures an [Application]. The zero value is usable, except that a Loader is required
// before commands can be loaded.
type Options struct {
	// ProgName is the program name used in help text. Defaults to the base name of os.Args[0].
	ProgName string
	// ShortHelp is shown at the top of the top-level help text.
	ShortHelp string

	// Session is an optional pre-built session. The application borrows it instead of creating
	// its own.
	Session *Session
	// Loader adds commands to the top-level parser.
	Loader CommandLoader
	// Extensions are installed in order at construction. A nil slice uses the extensions added with
	// [RegisterExtension]; an empty, non-nil slice installs none.
	Extensions []Extension

	// Logger is the base logger for a session created by the application. Defaults to
	// [slog.Default].
	Logger *slog.Logger
	// ConfigFile is an optional YAML file with per-user defaults, see [Config]. The <PROG>_CONFIG
	// environment variable, e.g. AZ_CONFIG, takes precedence.
	ConfigFile string

	// Stdout and Stderr receive command output and usage text. Default to [os.Stdout] and
	// [os.Stderr].
	Stdout, Stderr io.Writer
	// Getenv reads environment variables. Defaults to [os.Getenv].
	Getenv func(string) string
}

func checkAndSetOptions(opt *Options) *Options {
	o := Options{}
	if opt != nil {
		o = *opt
	}
	if o.ProgName == "" {
		o.ProgName = filepath.Base(os.Args[0])
	}
	if o.Extensions == nil {
		o.Extensions = RegisteredExtensions()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	return &o
}

// Application builds the parsers for a single invocation and runs the command selected by the
// command line.
type Application struct {
	// Session is shared with every event handler.
	Session *Session
	// GlobalParser holds the flags shared by every command.
	GlobalParser *cli.Command
	// Parser is the top-level parser. It inherits the global flags and receives loaded commands.
	Parser *cli.Command

	opts *Options
}

// New constructs an application. Built-in handlers are registered on the session first, then every
// extension is installed, and only then are the global and top-level parsers created, firing
// GlobalParser.Created and CommandParser.Created in that order.
func New(ctx context.Context, opts *Options) (*Application, error) {
	opts = checkAndSetOptions(opts)
	a := &Application{
		Session: opts.Session,
		opts:    opts,
	}
	if a.Session == nil {
		a.Session = NewSession(opts.ProgName, opts.Logger)
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}

	// Register presence of and handlers for global parameters
	event.OnGlobalParserCreated(a.Session, a.registerBuiltinArguments)
	event.OnCommandParserParsed(a.Session, a.handleBuiltinArguments)

	// Let extensions make their presence known before any parser exists
	for _, ext := range opts.Extensions {
		if err := ext.Register(a); err != nil {
			return nil, fmt.Errorf("failed to register extension: %w", err)
		}
	}

	a.GlobalParser = &cli.Command{
		Name:        opts.ProgName,
		Flags:       flag.NewFlagSet(opts.ProgName, flag.ContinueOnError),
		DisableHelp: true,
	}
	if err := a.Session.Raise(ctx, event.GlobalParserCreated{Parser: a.GlobalParser}); err != nil {
		return nil, err
	}

	a.Parser = &cli.Command{
		Name:      opts.ProgName,
		ShortHelp: opts.ShortHelp,
	}
	a.Parser.Inherit(a.GlobalParser)
	if err := a.Session.Raise(ctx, event.CommandParserCreated{Parser: a.Parser}); err != nil {
		return nil, err
	}
	a.Session.Log.DebugContext(ctx, "application created", slog.Int("extensions", len(opts.Extensions)))
	return a, nil
}

func (a *Application) loadConfig() error {
	path := a.opts.Getenv(configEnv(a.opts.ProgName))
	if path == "" {
		path = a.opts.ConfigFile
	}
	if path == "" {
		return nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return cfg.apply(a.Session)
}

// LoadCommands adds commands to the top-level parser. The first argument not starting with "-" is
// taken as the command noun, and only the commands under it are loaded. Without a noun, for example
// for a bare "--help", every command is loaded. Every command is also loaded when a shell
// completion request is pending.
//
// After CommandParser.Loaded fires, a pending shell completion request is answered. In that case
// LoadCommands returns [complete.ErrCompleted] and the command line should not be executed.
func (a *Application) LoadCommands(ctx context.Context, argv []string) error {
	if a.opts.Loader == nil {
		return errors.New("no command loader configured")
	}
	// A completion request needs the full command tree, whatever argv holds
	var noun string
	if a.opts.Getenv("COMP_LINE") == "" {
		noun = peekNoun(a.Parser, argv)
	}
	a.Session.Log.DebugContext(ctx, "loading commands", slog.String("noun", noun))
	if err := a.opts.Loader.AddToParser(a.Parser, a.Session, noun); err != nil {
		return fmt.Errorf("failed to load commands: %w", err)
	}
	if err := a.Session.Raise(ctx, event.CommandParserLoaded{Parser: a.Parser}); err != nil {
		return err
	}

	handled, err := complete.Autocomplete(a.Parser, a.opts.Getenv, a.opts.Stdout)
	if err != nil {
		return err
	}
	if handled {
		return complete.ErrCompleted
	}
	return nil
}

// Execute parses argv against the loaded parser, fires CommandParser.Parsed, and invokes the
// resolved command with its public parameters. The command's result and error are returned
// unmodified.
func (a *Application) Execute(ctx context.Context, argv []string) (any, error) {
	args, err := cli.Parse(a.Parser, argv)
	if err != nil {
		return nil, err
	}
	if err := a.Session.Raise(ctx, event.CommandParserParsed{Args: args}); err != nil {
		return nil, err
	}
	a.Session.Log.DebugContext(ctx, "executing command",
		slog.String("command", args.Path()),
		slog.String("output", string(a.Session.OutputFormat)),
	)
	return cli.Run(ctx, args)
}
