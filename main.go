// ABOUTME: Entry point for the companion CLI
// ABOUTME: Terminal client for the Companion chat service

package main

import (
	"fmt"
	"os"

	"github.com/markalston/companion/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
