// Command invaders runs the lock-step invaders simulation, in process or split
// across a TCP coordinator and remote workers.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	// Panic recovery: give the terminal back before reporting
	defer func() {
		if r := recover(); r != nil {
			restoreTerminal()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mINVADERS CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
