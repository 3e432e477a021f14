// ABOUTME: Entry point for the placement-planner CLI
// ABOUTME: Delegates to the cobra command tree

package main

import (
	"os"

	"github.com/markalston/placement-planner/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(2)
	}
}
