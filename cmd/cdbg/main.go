// Command cdbg is the CLI front end for the streaming cDBG engine,
// replacing the teacher's flag-based encode/decode subcommands with a
// cobra command tree (cobra is part of the jinterlante1206-AleutianLocal
// stack).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingsford-group/cdbg/internal/xlog"
)

var log = xlog.New("cmd")

func main() {
	root := &cobra.Command{
		Use:   "cdbg",
		Short: "Streaming compact de Bruijn graph engine",
	}
	root.AddCommand(newBuildCmd())
	root.AddCommand(newStatsCmd())

	if err := root.Execute(); err != nil {
		log.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
