package app

import (
	"log/slog"

	"github.com/mfridman/clikit/pkg/event"
)

// Session tracks state for a single CLI invocation, such as the output format and logger, and
// dispatches lifecycle events so extensions can modify the invocation as it progresses.
type Session struct {
	event.Dispatcher

	// OutputFormat is how a command's result is written. Defaults to [OutputList].
	OutputFormat OutputFormat

	// SubscriptionID is set from the --subscription flag or the config file. Empty when neither was
	// given.
	SubscriptionID string

	// Log is the session's named logger.
	Log *slog.Logger
}

// NewSession returns a session with default settings. A nil logger uses [slog.Default]. The
// session logger is tagged with name.
func NewSession(name string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		OutputFormat: OutputList,
		Log:          logger.With(slog.String("logger", name)),
	}
}
