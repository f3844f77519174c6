// Command shelfctl manages a shelfmatch catalog directly on disk.
//
// It opens the same data directory as the server and takes the same
// directory lock, so it refuses to run while a server owns the catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
