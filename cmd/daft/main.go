// Command daft manages a git repository as parallel per-branch
// working directories over a single shared bare repository.
package main

import "github.com/daft-dev/daft/internal/cmd"

var (
	buildVersion = "dev"
)

func main() {
	cmd.SetVersionInfo(buildVersion)
	cmd.Execute()
}
