package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [FILE ...]",
		Aliases: []string{"l"},
		Short:   "Print the image list as JSON",
		Long: `Print the image URLs a gallery would show as a JSON array.

The output is the format --json expects, so a list can be generated once and
published next to a page that loads it at runtime.

Examples:
  kuvia list -r -d photos > images.json
  kuvia list -j https://example.com/images.json  # Fetch and print a list`,
		Args: cobra.ArbitraryArgs,
		RunE: a.runList,
	}
	cmd.Flags().Bool("compact", false, "Print the array on a single line")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	cfg, logger, err := a.load(cmd, args)
	if err != nil {
		return err
	}

	urls, err := imageURLs(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	if urls == nil {
		urls = []string{}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetEscapeHTML(false)
	if compact, _ := cmd.Flags().GetBool("compact"); !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(urls)
}
