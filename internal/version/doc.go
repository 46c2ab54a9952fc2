// Package version exposes build metadata injected at compile time and a
// reusable cobra `version` subcommand.
package version
