package main // entry point for the supersetconf binary

import (
	"os" // os.Exit reports failure to the shell
)

func main() {
	if err := newRootCmd().Execute(); err != nil { // run the selected subcommand
		os.Exit(1) // cobra already printed the error
	}
}
