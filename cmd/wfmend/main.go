/*
wfmend validates and auto-repairs CI/CD workflow definition documents.

It loads indentation-scoped pipeline definitions, detects syntax and
structural defects, applies deterministic repairs, and rewrites the
documents safely (timestamped backup plus atomic replace), producing a
machine-readable run report.

Usage:

	wfmend <command> [arguments]

Commands:

	wfmend fix-all <root-dir>        Validate, repair, and rewrite every document
	wfmend validate-only <path>      Report issues for one document, no writes
	wfmend create-template <name>    Emit a minimal valid document skeleton
	wfmend version                   Print version information

See 'wfmend help <command>' for more information on a specific command.
*/
package main

import (
	"os"

	"github.com/deeklead/wfmend/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
