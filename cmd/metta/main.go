// Metta runs MeTTa programs: atoms are added to a knowledge space, and
// expressions following "!" are evaluated against it by pattern matching
// and rewriting.
//
// Usage:
//
//	# Run programs and print the results of every evaluation
//	metta run family.metta queries.metta
//
//	# Interactive session
//	metta repl
//
//	# Serve evaluation over HTTP, with metrics, probes and snapshots
//	metta serve --config metta.yaml kb/
//
//	# Manage snapshots of the knowledge space
//	metta snapshot list
//
//	# Show version information
//	metta version
package main

import "os"

func main() {
	os.Exit(Execute())
}
