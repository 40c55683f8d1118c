// Command nilql generates keys, encrypts and decrypts values, and splits or
// reassembles documents for nilql clusters. Input is read from stdin or
// --in, output written to stdout or --out, both as JSON.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
