package main

import (
	"os"

	"github.com/Kamar-Folarin/migration-monitor/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
