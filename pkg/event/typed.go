package event

import (
	"context"

	cli "github.com/mfridman/clikit"
)

// Registrar is anything handlers can be registered on, such as a [Dispatcher] or a session
// embedding one.
type Registrar interface {
	Register(kind Kind, h Handler)
}

// OnGlobalParserCreated registers fn for [KindGlobalParserCreated].
func OnGlobalParserCreated(r Registrar, fn func(ctx context.Context, parser *cli.Command) error) {
	r.Register(KindGlobalParserCreated, func(ctx context.Context, e Event) error {
		return fn(ctx, e.(GlobalParserCreated).Parser)
	})
}

// OnCommandParserCreated registers fn for [KindCommandParserCreated].
func OnCommandParserCreated(r Registrar, fn func(ctx context.Context, parser *cli.Command) error) {
	r.Register(KindCommandParserCreated, func(ctx context.Context, e Event) error {
		return fn(ctx, e.(CommandParserCreated).Parser)
	})
}

// OnCommandParserLoaded registers fn for [KindCommandParserLoaded].
func OnCommandParserLoaded(r Registrar, fn func(ctx context.Context, parser *cli.Command) error) {
	r.Register(KindCommandParserLoaded, func(ctx context.Context, e Event) error {
		return fn(ctx, e.(CommandParserLoaded).Parser)
	})
}

// OnCommandParserParsed registers fn for [KindCommandParserParsed].
func OnCommandParserParsed(r Registrar, fn func(ctx context.Context, args *cli.Arguments) error) {
	r.Register(KindCommandParserParsed, func(ctx context.Context, e Event) error {
		return fn(ctx, e.(CommandParserParsed).Args)
	})
}
