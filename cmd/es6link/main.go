// Command es6link is the CLI front end for the module linker: it runs the
// Parser Pass, Registry, and Rewriter Pass over a directory of module
// fixtures and reports diagnostics or a concatenated result.
package main

import (
	"fmt"
	"os"

	"github.com/rintaro/es6link/internal/logger"
)

func main() {
	if msg, ok := runWithRecover(); !ok {
		fmt.Fprintln(os.Stderr, "es6link: internal error:", msg)
		os.Exit(2)
	}
}

// runWithRecover turns an internal invariant break (logger.Internal) into a
// clean exit instead of a raw Go panic reaching the user, per spec §7.
func runWithRecover() (msg string, ok bool) {
	defer func() {
		if m, broke := logger.RecoverInternal(); broke {
			msg, ok = m, false
		}
	}()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
	return "", true
}
