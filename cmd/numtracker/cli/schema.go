package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/numtracker/api"
)

// SchemaCmd prints the authored SDL document describing the contract
// layer's shape.
func SchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(api.SchemaSDL)
			return nil
		},
	}
}
