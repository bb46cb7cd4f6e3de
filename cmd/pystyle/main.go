// Command pystyle checks Python source files for PEP 8 style violations.
//
// Usage:
//
//	pystyle [flags] <location>
//
// Examples:
//
//	# Check a single file
//	pystyle app.py
//
//	# Check every .py file directly inside a directory
//	pystyle ./src
//
//	# Emit SARIF for code scanning
//	pystyle --format sarif ./src > pystyle.sarif
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
