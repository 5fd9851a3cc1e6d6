package main

import (
	"os"

	"github.com/oraclewow/oracle-backend/cmd/oracle/commands"
)

// main is the entry point for the Oracle CLI
// ⭐ Unified CLI entry point: go run ./cmd/oracle [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
