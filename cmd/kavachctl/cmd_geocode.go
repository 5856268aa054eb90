package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kavach/internal/modules/location"
	"kavach/internal/types"
)

var (
	geocodeLat float64
	geocodeLng float64
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "resolve the district and cache cell for a coordinate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := types.Point{Lat: geocodeLat, Lng: geocodeLng}
		if err := location.Validate(p); err != nil {
			return err
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := newLocationService(cfg, logger)
		if err != nil {
			return err
		}
		place := svc.ResolveDistrict(cmd.Context(), p)
		cell, err := location.CellOf(p, cfg.Cache.GeocodeCell)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "district: %s\naddress:  %s\ncell:     %s (res %d)\n",
			place.District, place.FormattedAddress, cell, cfg.Cache.GeocodeCell)
		return nil
	},
}

func init() {
	geocodeCmd.Flags().Float64Var(&geocodeLat, "lat", 0, "latitude")
	geocodeCmd.Flags().Float64Var(&geocodeLng, "lng", 0, "longitude")
	_ = geocodeCmd.MarkFlagRequired("lat")
	_ = geocodeCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(geocodeCmd)
}
