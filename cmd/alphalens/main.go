package main

import (
	"os"

	"github.com/wonny/alphalens/cmd/alphalens/commands"
)

// main is the entry point for the alphalens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/alphalens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
