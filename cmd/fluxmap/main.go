package main

import (
	"os"

	"github.com/fluxmap/fluxmap/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
