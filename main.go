// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Signon.
//
// Usage:
//
//	go run . [flags]
//	./signon [flags]
//
// This launches the Signon CLI. See --help for options.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pverkade/signon/buildvars"
	"github.com/pverkade/signon/ui/cli"
)

// main is the entrypoint for the Signon CLI.
func main() {
	if os.Getenv("SIGNON_SHOW_VERSION") == "1" {
		fmt.Fprintf(os.Stderr, "Signon version: %s\n", buildvars.VersionOrDefault("dev"))
	}

	if err := cli.Execute(); err != nil {
		log.Printf("Signon CLI error: %v", err)
		os.Exit(1)
	}
}
