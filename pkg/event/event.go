// Package event dispatches application lifecycle events to registered handlers.
//
// Handlers for a kind fire in registration order. Dispatch is fail-fast: the first handler that
// returns an error stops the remaining handlers for that event, and the error is returned to the
// caller of [Dispatcher.Raise] unmodified. Registering a handler for a kind while that kind is
// being raised is not supported.
package event

import (
	"context"

	cli "github.com/mfridman/clikit"
)

// Kind names a lifecycle event.
type Kind string

const (
	// KindGlobalParserCreated fires once the parser holding flags shared by every command exists.
	KindGlobalParserCreated Kind = "GlobalParser.Created"
	// KindCommandParserCreated fires once the top-level parser exists, before commands are loaded.
	KindCommandParserCreated Kind = "CommandParser.Created"
	// KindCommandParserLoaded fires after commands have been loaded into the top-level parser.
	KindCommandParserLoaded Kind = "CommandParser.Loaded"
	// KindCommandParserParsed fires after the command line has been parsed, before the resolved
	// command runs.
	KindCommandParserParsed Kind = "CommandParser.Parsed"
)

// Event is the payload of a lifecycle event. It is one of [GlobalParserCreated],
// [CommandParserCreated], [CommandParserLoaded] or [CommandParserParsed].
type Event interface {
	Kind() Kind
	sealed()
}

// GlobalParserCreated carries the global parser. Handlers typically add flags to it.
type GlobalParserCreated struct {
	Parser *cli.Command
}

// CommandParserCreated carries the top-level parser, which already inherits the global flags.
type CommandParserCreated struct {
	Parser *cli.Command
}

// CommandParserLoaded carries the top-level parser after commands have been added.
type CommandParserLoaded struct {
	Parser *cli.Command
}

// CommandParserParsed carries the parsed arguments. Handlers may modify them in place.
type CommandParserParsed struct {
	Args *cli.Arguments
}

func (GlobalParserCreated) Kind() Kind  { return KindGlobalParserCreated }
func (CommandParserCreated) Kind() Kind { return KindCommandParserCreated }
func (CommandParserLoaded) Kind() Kind  { return KindCommandParserLoaded }
func (CommandParserParsed) Kind() Kind  { return KindCommandParserParsed }

func (GlobalParserCreated) sealed()  {}
func (CommandParserCreated) sealed() {}
func (CommandParserLoaded) sealed()  {}
func (CommandParserParsed) sealed()  {}

// Handler handles a lifecycle event.
type Handler func(ctx context.Context, e Event) error

// Dispatcher is a registry of handlers keyed by event kind. The zero value is ready to use.
type Dispatcher struct {
	handlers map[Kind][]Handler
}

// Register appends h to the handlers for kind. The same handler may be registered more than once,
// and fires once per registration.
func (d *Dispatcher) Register(kind Kind, h Handler) {
	if d.handlers == nil {
		d.handlers = make(map[Kind][]Handler)
	}
	d.handlers[kind] = append(d.handlers[kind], h)
}

// Raise invokes every handler registered for the event's kind, in registration order. It is a
// no-op when no handler is registered.
func (d *Dispatcher) Raise(ctx context.Context, e Event) error {
	for _, h := range d.handlers[e.Kind()] {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Handlers returns the number of handlers registered for kind.
func (d *Dispatcher) Handlers(kind Kind) int {
	return len(d.handlers[kind])
}
