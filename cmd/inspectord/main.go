package main

import (
	"fmt"
	"os"

	"github.com/manojdaspy/inspection-system/cmd/inspectord/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
