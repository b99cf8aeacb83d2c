// Package cmd implements the agora CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🏛"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: logo + " agora, a multi-agent debate arena",
	Long:  logo + " agora puts a roster of LLM personas in a room and lets them argue",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(debateCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statusCmd)
}
