package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "squash",
	Short:         "squash - losslessly shrink dmi, png and ogg assets in place",
	Long:          "squash recompresses dmi/png images and remuxes ogg audio in place, in parallel, and never leaves a file half-written.",
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
