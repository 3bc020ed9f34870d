// Package main provides the haskellings CLI entry point.
//
// haskellings is a tutor for learning Haskell: it compiles a catalog of
// small exercises one at a time and tells the learner whether each one
// passes, with a watch mode that re-checks on every save.
package main

import (
	"os"

	"github.com/TonyCrane/haskellings/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
