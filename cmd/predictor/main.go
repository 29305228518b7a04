package main

import (
	"os"

	"github.com/codergirlprerna/t20-predictor/backend/cmd/predictor/commands"
)

// main is the entry point for the predictor CLI
// ⭐ single CLI entry point: go run ./cmd/predictor [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
