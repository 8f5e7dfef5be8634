package app

import (
	"context"
	"flag"
	"fmt"

	cli "github.com/mfridman/clikit"
)

// Internal keys for the built-in global flags.
const (
	SubscriptionKey = "_subscription_id"
	OutputFormatKey = "_output_format"
)

func (a *Application) registerBuiltinArguments(_ context.Context, parser *cli.Command) error {
	if parser.Flags == nil {
		parser.Flags = flag.NewFlagSet(parser.Name, flag.ContinueOnError)
	}
	parser.Flags.String("subscription", "", "name or ID of the subscription to use")
	parser.Flags.String("output", "", "output format")
	parser.FlagsMetadata = append(parser.FlagsMetadata,
		cli.FlagMetadata{Name: "subscription", Dest: SubscriptionKey, Hidden: true},
		cli.FlagMetadata{Name: "output", Short: "o", Dest: OutputFormatKey, Choices: outputChoices()},
	)
	return nil
}

// handleBuiltinArguments moves the built-in values onto the session. An absent output format is
// fine, since not every invocation sets one.
func (a *Application) handleBuiltinArguments(_ context.Context, args *cli.Arguments) error {
	if v, ok := args.Internal[SubscriptionKey].(string); ok {
		a.Session.SubscriptionID = v
	}
	value, ok := args.Pop(OutputFormatKey)
	if !ok {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("output format: unexpected value of type %T", value)
	}
	format, err := ParseOutputFormat(s)
	if err != nil {
		return err
	}
	a.Session.OutputFormat = format
	return nil
}
