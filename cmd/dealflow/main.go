package main

import (
	"os"

	"github.com/wonny/dealflow/cmd/dealflow/commands"
)

// main is the entry point for the dealflow CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/dealflow [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
