package main

import (
	"os"

	"github.com/MikeSquared-Agency/leadlens/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
