package main

import (
	"context"
	"fmt"
	"os"

	"forge/app"
)

func main() {
	ctx := context.Background()

	// Bootstrap the launcher: config, mode detection, base directory.
	application, err := app.Bootstrap(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "forge: %v\n", err)
		os.Exit(1)
	}

	// Delegate to the packaged application (blocks until it exits).
	// Its exit code becomes ours, uninterpreted.
	code, err := application.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forge: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}
