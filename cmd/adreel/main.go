// filepath: cmd/adreel/main.go
package main

import (
	"adreel/internal/cli"
)

func main() {
	// Delegate all execution to the CLI package
	cli.Execute()
}
