// Command cvctl runs the native CV pipeline on local files and manages the database schema.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
