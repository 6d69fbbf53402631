// Package main hosts the claudepack CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the packaging pipeline, reports
// external tool availability, lists recorded builds, and scaffolds
// configuration. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
