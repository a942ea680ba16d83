// evmscript compiles a script into EVM bytecode.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tcoulter/evmscript"
	"github.com/tcoulter/evmscript/internal/config"
)

func main() {
	configPath := flag.String("config", "", "TOML file providing extra bindings and compiler flags")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: evmscript [options] <script.js>\n\n")
		fmt.Fprintf(os.Stderr, "Compiles a script into EVM bytecode and prints \"0x...\" to standard output.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	scriptPath := flag.Arg(0)

	var bindings map[string]any
	var prelude string
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		bindings = cfg.ExtraBindings()
		prelude = cfg.DeployablePrelude()
	}

	data, err := os.ReadFile(scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := evmscript.Preprocess(prelude+string(data), bindings, scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(out)
}
