package main

import (
	"os"

	"github.com/imkarma/relay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
