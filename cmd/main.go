package main

// Entry point of strategy-charts
// Executes the Cobra root command and turns its error into exit code 1

import (
	"fmt"
	"os"

	"strategy-charts/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
