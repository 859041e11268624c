package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one parameter discovery pass",
	Long: `Lists the parameters every active station reports in the sensor
database, registers the missing ones and creates the visibility rows for
every user linked to those stations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := appFrom(cmd).Discovery.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Stations scanned: %d\n", report.Stations)
		fmt.Printf("Parameters added: %d\n", report.ParametersAdded)
		fmt.Printf("Visibility rows created: %d\n", report.RowsCreated)
		if report.Failures > 0 {
			fmt.Printf("Stations failed: %d\n", report.Failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
