// evmscript-lsp runs a diagnostics-only Language Server over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/tcoulter/evmscript/lsp"
)

func main() {
	if err := lsp.New().Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
