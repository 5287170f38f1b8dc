// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go is the conventional cmd/ entrypoint for the Signon binary. It
// defers to ui/cli, which owns the command tree.

package main

import (
	"log"
	"os"

	"github.com/pverkade/signon/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("Signon CLI error: %v", err)
		os.Exit(1)
	}
}
