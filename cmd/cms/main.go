// Command cms manages student records kept in a tab-separated file.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cms/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "cms:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
