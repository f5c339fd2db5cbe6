// The main package for the refurbwatch executable.
package main

import (
	"github.com/mizutanik/refurbwatch/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
