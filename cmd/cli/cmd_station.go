package main

import (
	"fmt"

	"meteoapi/internal/entity/dto"

	"github.com/spf13/cobra"
)

var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Station management commands",
}

var createStationCmd = &cobra.Command{
	Use:   "create <station-number>",
	Short: "Register a station",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateStation,
}

var (
	stationName     string
	stationLocation string
	stationInactive bool
)

func init() {
	createStationCmd.Flags().StringVar(&stationName, "name", "", "display name (defaults to the station number)")
	createStationCmd.Flags().StringVar(&stationLocation, "location", "", "free-form location")
	createStationCmd.Flags().BoolVar(&stationInactive, "inactive", false, "create the station deactivated")
	rootCmd.AddCommand(stationCmd)
	stationCmd.AddCommand(createStationCmd)
}

func runCreateStation(cmd *cobra.Command, args []string) error {
	application := appFrom(cmd)

	req := dto.StationCreateRequest{StationNumber: args[0], Name: stationName}
	if stationLocation != "" {
		req.Location = &stationLocation
	}
	active := !stationInactive
	req.IsActive = &active

	summary, err := application.Stations.CreateStation(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create station: %w", err)
	}

	// 立即登记传感器库中已有的参数
	report, err := application.Discovery.RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("station created but parameter discovery failed: %w", err)
	}

	fmt.Printf("Station created successfully!\n")
	fmt.Printf("Number: %s\n", summary.StationNumber)
	fmt.Printf("Name: %s\n", summary.Name)
	fmt.Printf("Active: %t\n", summary.IsActive)
	fmt.Printf("Parameters registered: %d\n", report.ParametersAdded)
	return nil
}
