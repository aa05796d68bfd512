// Package main hosts the bidslite CLI entrypoint and command graph.
//
// The Cobra-based command tree wires metadata reading, validation, planning,
// and execution into validate, plan, and apply commands, plus run history and
// configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on output.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
