package main

import (
	"os"

	"github.com/deppfellow/avisos-api/internal/cmd/avisos"
)

func main() {
	if err := avisos.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
