package main

import (
	"encoding/json"
	"fmt"

	"github.com/goran-ethernal/ScanKit/internal/config"
	pkgconfig "github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r := &jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
		}
		schema := r.Reflect(&pkgconfig.Config{})
		schema.Title = "ScanKit configuration"

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration file, apply defaults and validate it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (explorer %s/%s)\n",
			configPath, cfg.Client.APIKind, cfg.Client.Network)
		return err
	},
}

func init() {
	configCmd.AddCommand(configSchemaCmd, configValidateCmd)
}
