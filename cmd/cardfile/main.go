// Package main provides the cardfile command.
package main

import (
	"os"

	"github.com/leapstack-labs/cardfile/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
