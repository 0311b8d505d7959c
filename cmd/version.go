package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the projsync version",
	Run: func(cmd *cobra.Command, args []string) {
		if IsJSONOutput() {
			OutputJSON(map[string]string{"version": Version})
			return
		}
		fmt.Printf("pjs version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
