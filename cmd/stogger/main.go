package main

import (
	"os"

	"github.com/wonny/stogger/cmd/stogger/commands"
)

// main is the entry point for the stogger CLI
// ⭐ Unified CLI entry point: go run ./cmd/stogger [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
