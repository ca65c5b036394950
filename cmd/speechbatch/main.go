// Package main is the entry point for the speechbatch CLI.
//
// Usage:
//
//	speechbatch [flags] <command> [args]
//
// Commands:
//
//	build    - Scan audio/transcript pairs and save them as a corpus
//	inspect  - Summarize a saved corpus
//	batch    - Draw padded batches from a saved corpus
//	cache    - Inspect or purge the feature cache
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/speechbatch/cmd/speechbatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
