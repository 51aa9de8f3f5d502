package main

import (
	"os"

	"github.com/slabs-dev/slabs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
