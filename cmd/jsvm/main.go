// Command jsvm is the host harness for the engine core: it loads a JSON
// CodeBlock fixture, runs it to completion in a fresh realm, and exposes
// the operational tooling spec.md §6/§9 expects a host to provide
// (metrics, a shape-tree debug view, GC pause reporting, heap
// inspection). Subcommand layout follows the teacher's own cmd/<tool>
// convention of one cobra command per operational concern.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsvm",
		Short: "ECMAScript execution engine core host harness",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newGCCmd())
	root.AddCommand(newHeapCmd())
	return root
}
