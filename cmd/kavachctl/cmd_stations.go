package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kavach/internal/modules/location"
	"kavach/internal/modules/station"
	"kavach/internal/types"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "manage police stations",
}

var stationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list all stations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		repo, closer, err := openStationRepo(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		stations, err := station.NewService(repo, logger).List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDISTRICT\tLAT\tLNG\tACTIVE")
		for _, s := range stations {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.5f\t%.5f\t%t\n", s.ID, s.Name, s.District, s.Location.Lat, s.Location.Lng, s.IsActive)
		}
		return w.Flush()
	},
}

var stationsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "create stations from a CSV of name,district,address,lat,lng[,phone,email]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		rows, err := parseStationsCSV(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		repo, closer, err := openStationRepo(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()
		svc := station.NewService(repo, logger)

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(rows),
				progressbar.OptionSetDescription("Importing stations"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		created := 0
		for i, row := range rows {
			if _, err := svc.Create(cmd.Context(), row); err != nil {
				return fmt.Errorf("row %d (%s): %w", i+1, row.Name, err)
			}
			created++
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d stations\n", created)
		return nil
	},
}

var (
	nearestLat      float64
	nearestLng      float64
	nearestDistrict string
)

var stationsNearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "show the station a report at --lat/--lng would be assigned to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := types.Point{Lat: nearestLat, Lng: nearestLng}
		if err := location.Validate(p); err != nil {
			return err
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		repo, closer, err := openStationRepo(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		district := nearestDistrict
		if district == "" {
			if loc, err := newLocationService(cfg, logger); err == nil {
				district = loc.ResolveDistrict(cmd.Context(), p).District
			} else {
				district = location.UnknownDistrict
			}
		}

		st, err := station.NewService(repo, logger).FindNearestStation(cmd.Context(), p, district)
		if err != nil {
			return err
		}
		if st == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "no active station (district %s)\n", district)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.2f km\n",
			st.ID, st.Name, st.District, location.RoundKm(location.DistanceKm(p, st.Location)))
		return nil
	},
}

func init() {
	stationsNearestCmd.Flags().Float64Var(&nearestLat, "lat", 0, "latitude")
	stationsNearestCmd.Flags().Float64Var(&nearestLng, "lng", 0, "longitude")
	stationsNearestCmd.Flags().StringVar(&nearestDistrict, "district", "", "district to search first (default: reverse geocode)")
	_ = stationsNearestCmd.MarkFlagRequired("lat")
	_ = stationsNearestCmd.MarkFlagRequired("lng")

	stationsCmd.AddCommand(stationsListCmd, stationsImportCmd, stationsNearestCmd)
	rootCmd.AddCommand(stationsCmd)
}
