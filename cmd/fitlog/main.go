// Command fitlog serves the fitness tracker API and manages its data from
// the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(newCLI()).Execute(); err != nil {
		os.Exit(1)
	}
}
