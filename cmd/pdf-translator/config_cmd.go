package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Finnson11-star/pdf-translator/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.OpenAIAPIKey != "" {
				shown.OpenAIAPIKey = "********"
			}
			out, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", mgr.GetConfigPath(), out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewConfigManager(opts.configPath)
			if err != nil {
				return err
			}
			if err := mgr.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", mgr.GetConfigPath())
			return nil
		},
	})
	return cmd
}
