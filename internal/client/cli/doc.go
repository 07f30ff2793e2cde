// Package cli provides the interactive kidkeeper command-line client.
//
// It wires configuration, local and remote storage, field-level encryption
// and the application services into a read-eval-print loop. A family code is
// entered once with "join" (hidden input) and stays active on this device
// until "leave".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
