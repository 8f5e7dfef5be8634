// Package cli is the argument parser underneath clikit. It models a command line as a tree of
// [Command] values, each carrying a standard [flag.FlagSet] plus [FlagMetadata] describing where
// a flag's value lands in the parsed result.
//
// Parsing produces [Arguments], which separates public values (handed to a command's [ExecFunc])
// from internal values (read by built-in pipeline handlers and never exposed to commands). A flag
// is internal when its metadata says so, or when its destination key starts with an underscore.
//
// The application layer in pkg/app builds on this package to add lifecycle events, lazy command
// loading and shell completion.
package cli
