package commands

import (
	"encoding/json"
	"fmt"

	"vitiharvest-backend/lib/serviceutil"
	"vitiharvest-backend/services/harvest"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Prints the valid options, year ranges and sub-options.",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := json.MarshalIndent(harvest.Reference(), "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to marshal reference", err)
		}
		fmt.Println(string(out))
	},
}
