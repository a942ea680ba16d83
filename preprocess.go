// Package evmscript compiles scripts written against its helper catalogue
// into EVM bytecode. Preprocess and PreprocessFile are the only two public
// entry points; everything else lives in pkg/ for tooling (the CLI, the
// LSP server) that wants finer-grained access to the pipeline.
package evmscript

import (
	"fmt"
	"os"

	"github.com/tcoulter/evmscript/assets"
	"github.com/tcoulter/evmscript/pkg/host"
	"github.com/tcoulter/evmscript/pkg/processor"
)

// Preprocess compiles source into a "0x"-prefixed, uppercase hex bytecode
// string. extraBindings are installed in the script's namespace before it
// runs, alongside the helper catalogue; filename labels reported error
// positions and may be empty.
func Preprocess(source string, extraBindings map[string]any, filename string) (string, error) {
	res, err := host.Run(source, extraBindings, filename)
	if err != nil {
		return "", err
	}

	out, err := processor.Process(res.Context.Actions(), res.Context.TailActions(), res.Namespace)
	if err != nil {
		return "", err
	}
	compiled := "0x" + out.Hex

	if res.Context.ConfigBool("deployable") {
		return wrapDeployable(compiled)
	}
	return compiled, nil
}

// PreprocessFile reads path as UTF-8 and delegates to Preprocess, using
// path itself as the reported filename.
func PreprocessFile(path string, extraBindings map[string]any) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("evmscript: reading %s: %w", path, err)
	}
	return Preprocess(string(data), extraBindings, path)
}

// wrapDeployable recompiles the bundled deployer script with CODE bound to
// the just-produced runtime hex, turning it into deployment init code. The
// deployer script never sets the deployable flag itself, so this recursion
// is exactly one level deep.
func wrapDeployable(code string) (string, error) {
	return Preprocess(assets.DeployerScript, map[string]any{"CODE": code}, "deployer")
}
