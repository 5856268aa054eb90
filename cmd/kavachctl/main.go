// README: Operator CLI: schema migrations, station import and lookups against the configured store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kavachctl",
	Short: "operate the kavach crime-reporting backend",
	Long: `
kavachctl manages the data behind the kavach API: it applies database
migrations, bulk-imports police stations and answers the same geographic
lookups the API performs when a report is filed.

Configuration is read from the same KAVACH_* environment (and .env) as the API.
`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
