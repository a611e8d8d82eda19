package main

import (
	"os"

	"github.com/deemkeen/postbox/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
