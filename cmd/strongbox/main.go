package main

import (
	"os"

	"strongbox/cmd/strongbox/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
