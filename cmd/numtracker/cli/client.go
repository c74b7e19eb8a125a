package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/numtracker/internal/contract"
	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/wire"
)

// ClientCmd groups the commands that drive the contract layer directly,
// in-process, without going through the HTTP transport. Useful for
// operators on the machine running the service, and for scripting.
func ClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Drive the allocation and configuration operations directly",
	}

	cmd.AddCommand(clientConfigurationsCmd())
	cmd.AddCommand(clientConfigurationCmd())
	cmd.AddCommand(clientConfigureCmd())
	cmd.AddCommand(clientVisitDirectoryCmd())
	cmd.AddCommand(clientScanCmd())

	return cmd
}

// registerClaimsFlag adds a repeatable --claim flag to cmd and returns a
// function that builds the resulting Identity once flags are parsed.
func registerClaimsFlag(cmd *cobra.Command) func() contract.Identity {
	var claims []string
	cmd.Flags().StringSliceVar(&claims, "claim", nil, "claim to present to the auth policy (repeatable)")
	return func() contract.Identity {
		set := make(map[string]bool, len(claims))
		for _, c := range claims {
			c = strings.TrimSpace(c)
			if c != "" {
				set[c] = true
			}
		}
		return contract.Identity{Claims: set}
	}
}

func clientConfigurationsCmd() *cobra.Command {
	var filter []string

	cmd := &cobra.Command{
		Use:   "configurations",
		Short: "List configured instruments",
	}
	identity := registerClaimsFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var f []string
		if cmd.Flags().Changed("instrument") {
			f = filter
		}
		insts, err := wire.Contract().Configurations(context.Background(), identity(), f)
		if err != nil {
			return err
		}
		if len(insts) == 0 {
			fmt.Println("No instruments configured.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCAN NUMBER\tFALLBACK\tFILE SCAN NUMBER")
		for _, inst := range insts {
			fallback := "-"
			if inst.HasFallback() {
				fallback = fmt.Sprintf("%s (*.%s)", *inst.FallbackDirectory, inst.EffectiveFallbackExtension())
			}
			fileScanNumber := "-"
			if inst.FileScanNumber != nil {
				fileScanNumber = fmt.Sprintf("%d", *inst.FileScanNumber)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", inst.Name, inst.ScanNumber, fallback, fileScanNumber)
		}
		return w.Flush()
	}
	cmd.Flags().StringSliceVarP(&filter, "instrument", "i", nil, "restrict to this instrument (repeatable); omit the flag entirely to list all")
	return cmd
}

func clientConfigurationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configuration [instrument]",
		Short: "Show one instrument's configuration",
		Args:  cobra.ExactArgs(1),
	}
	identity := registerClaimsFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		inst, err := wire.Contract().Configuration(context.Background(), identity(), args[0])
		if err != nil {
			return err
		}
		printInstrument(inst)
		return nil
	}
	return cmd
}

func printInstrument(inst instrument.Instrument) {
	fmt.Printf("%s\n", color.New(color.FgGreen).Sprint(inst.Name))
	fmt.Printf("  visit template:    %s\n", inst.VisitTemplate)
	fmt.Printf("  scan template:     %s\n", inst.ScanTemplate)
	fmt.Printf("  detector template: %s\n", inst.DetectorTemplate)
	fmt.Printf("  scan number:       %d\n", inst.ScanNumber)
	if inst.HasFallback() {
		fmt.Printf("  fallback:          %s (*.%s)\n", *inst.FallbackDirectory, inst.EffectiveFallbackExtension())
	}
	if inst.FileScanNumber != nil {
		fmt.Printf("  file scan number:  %d\n", *inst.FileScanNumber)
	}
}

func clientConfigureCmd() *cobra.Command {
	var visitTemplate, scanTemplate, detectorTemplate, fallbackDirectory, fallbackExtension string
	var setNumber int64

	cmd := &cobra.Command{
		Use:   "configure [instrument]",
		Short: "Validate and persist an instrument's template configuration",
		Args:  cobra.ExactArgs(1),
	}
	identity := registerClaimsFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		inst := instrument.Instrument{
			Name:             args[0],
			VisitTemplate:    visitTemplate,
			ScanTemplate:     scanTemplate,
			DetectorTemplate: detectorTemplate,
		}
		if fallbackDirectory != "" {
			inst.FallbackDirectory = &fallbackDirectory
			if fallbackExtension != "" {
				inst.FallbackExtension = &fallbackExtension
			}
		}
		var setNumberPtr *int64
		if cmd.Flags().Changed("set-number") {
			setNumberPtr = &setNumber
		}
		if err := wire.Contract().Configure(context.Background(), identity(), inst, setNumberPtr); err != nil {
			return err
		}
		fmt.Printf("%s configured %s\n", color.New(color.FgGreen).Sprint("✓"), inst.Name)
		return nil
	}
	cmd.Flags().StringVar(&visitTemplate, "visit-template", "", "visit directory template (required)")
	cmd.Flags().StringVar(&scanTemplate, "scan-template", "", "scan file template (required)")
	cmd.Flags().StringVar(&detectorTemplate, "detector-template", "", "detector path template (required)")
	cmd.Flags().StringVar(&fallbackDirectory, "fallback-directory", "", "fallback tracker-file directory")
	cmd.Flags().StringVar(&fallbackExtension, "fallback-extension", "", "fallback tracker-file extension (defaults to the instrument name)")
	cmd.Flags().Int64Var(&setNumber, "set-number", 0, "override the instrument's scan-number counter")
	return cmd
}

func clientVisitDirectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit-directory [instrument] [visit]",
		Short: "Resolve a visit directory without allocating a scan number",
		Args:  cobra.ExactArgs(2),
	}
	identity := registerClaimsFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		paths, err := wire.Contract().Paths(context.Background(), identity(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(paths.Directory)
		return nil
	}
	return cmd
}

func clientScanCmd() *cobra.Command {
	var subdirectory string
	var detectors []string

	cmd := &cobra.Command{
		Use:   "scan [instrument] [visit]",
		Short: "Allocate the next scan number and render its paths",
		Args:  cobra.ExactArgs(2),
	}
	identity := registerClaimsFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		result, err := wire.Contract().Scan(context.Background(), identity(), args[0], args[1], subdirectory, detectors)
		if err != nil {
			return err
		}
		fmt.Printf("scan number: %d\n", result.ScanNumber)
		fmt.Printf("directory:   %s\n", result.Directory)
		fmt.Printf("scan file:   %s\n", path.Join(result.Directory, result.ScanFile))
		for name, p := range result.DetectorPaths {
			fmt.Printf("detector %s: %s\n", name, path.Join(result.Directory, p))
		}
		return nil
	}
	cmd.Flags().StringVar(&subdirectory, "subdirectory", "", "scan subdirectory")
	cmd.Flags().StringSliceVar(&detectors, "detector", nil, "detector name (repeatable)")
	return cmd
}
