package main

import (
	"os"

	"github.com/viatext/vtnode/cmd"
)

func main() {
	if err := cmd.CmdVtnode.Execute(); err != nil {
		os.Exit(1)
	}
}
