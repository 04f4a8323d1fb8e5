package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"printfarm-backend/internal/cli"
	"printfarm-backend/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "printfarmd",
		Short:   "printfarmd - job queue for a fleet of 3D printers",
		Version: version.String(),
		Long: `printfarmd accepts print orders, hands them to polling printers one at a
time and records completion and progress.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
