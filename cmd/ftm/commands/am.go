package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/ftm/am"
	"github.com/teranos/ftm/display"
	"github.com/teranos/ftm/errors"
)

func newAmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: "Manage ftm configuration",
		Long: `am: manage ftm configuration ("I am")

Configuration sources (in order of precedence):
1. Environment variables (FTM_* prefix, e.g. FTM_STATEMENTS_FORMAT)
2. Project config (nearest ftm.toml up from the working directory)
3. User config (~/.ftm/config.toml)
4. System config (/etc/ftm/config.toml)
5. Default values

Examples:
  ftm am show                     # Show current configuration
  ftm am show --format json       # Show configuration in JSON format
  ftm am sources                  # Show where every setting comes from
  ftm am validate                 # Validate current configuration
  ftm am init                     # Write the current configuration to ./ftm.toml`,
	}
	cmd.AddCommand(newAmShowCmd(), newAmSourcesCmd(), newAmValidateCmd(), newAmInitCmd())
	return cmd
}

func newAmShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return display.OutputJSON(w, cfg)
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to YAML")
				}
				_, err = fmt.Fprintf(w, "# ftm configuration\n%s", data)
				return err
			case "toml":
				data, err := am.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "# ftm configuration\n%s", data)
				return err
			default:
				return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")
	return cmd
}

func newAmSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show where every setting comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := am.Settings()
			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), settings)
			}
			rows := [][]string{{"Key", "Value", "Source", "From"}}
			for _, s := range settings {
				rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
			}
			return display.Table(cmd.OutOrStdout(), rows)
		},
	}
}

func newAmValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "configuration validation failed")
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Configuration is valid")
			return nil
		},
	}
}

func newAmInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to a file",
		Long: `Write the current configuration to a TOML file.

An existing file is kept as a rotating backup (.back1 to .back3).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			if err := am.WriteFile(path, cfg); err != nil {
				return err
			}
			abs, _ := filepath.Abs(path)
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", am.ProjectConfigName, "File to write")
	return cmd
}
