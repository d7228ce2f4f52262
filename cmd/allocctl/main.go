// Command allocctl previews order allocations and profit splits from the
// command line, against a SQLite database or a fixtures file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
