// Command welog holds the operator tasks of the Welog frontend: client state
// migrations and inspecting comment threads on the API.
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
