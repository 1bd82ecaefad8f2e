// Command presensi records daily attendance from chat events.
package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/roach88/presensi/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
