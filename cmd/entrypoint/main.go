package main

import (
	"github.com/redjax/upkeep/internal/version"

	// Import the cmd directory with root.go
	"github.com/redjax/upkeep/cmd"
)

func main() {
	// Finish any swap a previous run staged but did not complete
	version.TrySelfUpgrade()

	// Call the root command
	cmd.Execute()
}
