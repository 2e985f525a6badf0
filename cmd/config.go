package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kuvia/kuvia/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect kuvia configuration",
		Long: `Inspect the configuration kuvia runs with.

Examples:
  kuvia config show                      # Show the effective configuration
  kuvia config validate                  # Validate .kuvia.yml and the environment
  kuvia config validate --config x.yml   # Validate a specific file`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the configuration after loading the configuration file, applying
environment variable overrides and flags, and setting default values.`,
		Args: cobra.NoArgs,
		RunE: a.runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Validate the configuration for correctness.

This command checks for:
- Valid file types
- A readable page template
- Valid port ranges and hostnames
- Known log levels and formats
- A JSON image list combined with scan inputs (warning)`,
		Args: cobra.NoArgs,
		RunE: a.runConfigValidate,
	})

	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Decode()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return encoder.Close()
}

func (a *app) runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Decode()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Config file: %s\n", used)
	}

	result := config.Validate(cfg)
	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(out, "Configuration is valid")
		return nil
	}

	fmt.Fprint(out, result.String())
	return result.Err()
}
