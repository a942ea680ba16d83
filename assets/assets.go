// Package assets embeds the scripts bundled with the compiler itself,
// grounded on the pack's embedded-contract-bytecode pattern
// (systemcontracts/fermi and systemcontracts/niels's //go:embed string
// vars).
package assets

import _ "embed"

// DeployerScript wraps an already-compiled runtime program into
// deployment init code. Bound with CODE set to the "0x"-prefixed runtime
// hex, it is the script run when a compile requests the deployable config
// flag.
//
//go:embed deployer.js
var DeployerScript string
