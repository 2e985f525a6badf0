package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kuvia/kuvia/internal/version"
)

func newVersionCmd() *cobra.Command {
	var (
		versionFormat string
		versionShort  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for kuvia including:

- Version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)

Examples:
  kuvia version                # Show version information
  kuvia version --short        # Show the version only
  kuvia version --format json  # Output as JSON`,
		Args: cobra.NoArgs,
		// The version is printed without reading any configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			info := version.Info()

			switch versionFormat {
			case "text":
				if versionShort {
					_, err := fmt.Fprintln(out, version.Short())
					return err
				}
				_, err := fmt.Fprintln(out, info.String())
				return err
			case "json":
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			case "yaml":
				encoder := yaml.NewEncoder(out)
				defer encoder.Close()
				return encoder.Encode(info)
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", versionFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	return cmd
}
