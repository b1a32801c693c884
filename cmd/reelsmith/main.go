package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Cancelled runs exit quietly.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "reelsmith: %v\n", err)
		}
		os.Exit(1)
	}
}
