// The main package for the bchospitals executable.
package main

import (
	"github.com/openbcdata/bchospitals/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
