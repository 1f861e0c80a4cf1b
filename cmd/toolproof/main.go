// Command toolproof runs YAML-scripted end-to-end tests against CLI
// programs and the web apps they produce.
package main

import (
	"os"

	"toolproof/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
