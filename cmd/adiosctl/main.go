// Command adiosctl creates and serves adios-backed ublk devices and
// inspects the adaptive-deadline scheduler's knob surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "adiosctl",
		Short:         "Create and tune adios-scheduled ublk devices",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newKnobsCmd())
	return root
}
