package main

import (
	"os"

	"github.com/hyperlace-lang/hyperlace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
