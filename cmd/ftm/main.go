package main

import (
	"fmt"
	"os"

	"github.com/teranos/ftm/cmd/ftm/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
