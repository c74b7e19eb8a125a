package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/numtracker/cmd/numtracker/cli"
	"github.com/example/numtracker/internal/procconfig"
	"github.com/example/numtracker/internal/version"
	"github.com/example/numtracker/internal/wire"
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:     "numtracker",
		Short:   "Scan-number allocation and path-templating service",
		Version: version.String(),
		Long: `numtracker coordinates scan-number allocation and path rendering for
beamline instruments: it resolves visit directories, allocates sequential
scan numbers per instrument, and renders visit/scan/detector paths from
configured templates.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := procconfig.Resolve(v)
			if err := cli.ConfigureLogging(cfg.TracingLevel); err != nil {
				return err
			}
			wire.Configure(cfg)
			return nil
		},
	}

	procconfig.BindFlags(v, rootCmd.PersistentFlags())

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.SchemaCmd())
	rootCmd.AddCommand(cli.ClientCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
