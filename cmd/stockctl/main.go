// Command stockctl runs maintenance jobs against the stockroom database:
// bulk import, workbook export and restore, consumption predictions and
// seeding.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	root, cleanup := newRootCmd()
	err := root.Execute()
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
