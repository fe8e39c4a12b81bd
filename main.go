package main

import (
	"os"

	"github.com/notaprep/notaprep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
