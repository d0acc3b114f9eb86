package main

import (
	"os"

	"github.com/jmcarbo/clioscope/cmd/clioscope/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
