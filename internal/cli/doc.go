// Package cli implements the stripchart command-line interface.
//
// Each Cobra command is a thin wrapper around a xxxCommand function that
// takes its inputs explicitly, so commands can be tested without going
// through flag parsing.
//
// # Commands
//
//	stripchart init             - Create a starter stripchart.yaml
//	stripchart check            - Load the config and evaluate every parameter once
//	stripchart eval <equation>  - Evaluate a single equation against a source
//	stripchart watch            - Live strip-chart dashboard
//	stripchart serve            - Live JSON feed over websocket
//	stripchart version          - Print version information
//
// # Sessions
//
// watch and serve share openSession: load and validate the config,
// build a strip.Engine, and add every parameter to it. A parameter that
// fails to set up is reported and skipped; the session only fails when
// none of the configured parameters survive.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command and available to all subcommands.
package cli
