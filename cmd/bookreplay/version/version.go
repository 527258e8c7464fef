package version

import (
	"fmt"

	"github.com/flarebyte/bookreplay/internal/buildinfo"
	"github.com/spf13/cobra"
)

// NewCmd returns the `bookreplay version` command.
func NewCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				// Exactly one line.
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "bookreplay %s\n", buildinfo.Summary())
				return err
			}
			return encodeJSON(cmd.OutOrStdout(), buildinfo.Current())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detailed JSON version info")
	return cmd
}
