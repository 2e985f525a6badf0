package main

import (
	"os"

	"github.com/kuvia/kuvia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
