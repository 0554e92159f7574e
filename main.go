package main

import (
	"os"

	"github.com/GenesisAN/gbk2utf8/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
