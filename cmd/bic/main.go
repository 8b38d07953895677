package main

import (
	"os"

	"github.com/go-bic/bic/cmd/bic/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
