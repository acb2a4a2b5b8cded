// The main package for the catalog-migrator executable.
package main

import (
	"github.com/comicdex/catalog-migrator/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
