// Package debug provides a global verbose-diagnostics switch shared by the
// library and the command-line tools.
package debug

import (
	"fmt"
	"os"
)

// Verbose controls whether debug output is enabled
var Verbose bool

// Printf prints debug output to stderr if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format, args...)
	}
}

// Println prints debug output to stderr if verbose mode is enabled
func Println(args ...interface{}) {
	if Verbose {
		fmt.Fprint(os.Stderr, "[DEBUG] ")
		fmt.Fprintln(os.Stderr, args...)
	}
}
