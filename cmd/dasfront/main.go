package main

import (
	"os"

	"github.com/btouchard/dasfront/cmd/dasfront/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
