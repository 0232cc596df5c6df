package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guildpoint/guildpoint/internal/config"
)

func init() { //nolint: gochecknoinits
	dumpCmd.Flags().StringVar(&dumpConfigPath, "config", "./etc/", "Path to the configuration directory")
	dumpCmd.Flags().BoolVar(&dumpAsJSON, "json", false, "Dump as JSON instead of TOML")

	configCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	dumpConfigPath string
	dumpAsJSON     bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the GuildPoint configuration",
	}

	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration after file and environment merging",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadConfig(dumpConfigPath)
			if err != nil {
				return err
			}

			var out string
			if dumpAsJSON {
				out, err = config.DumpConfigJSON(cfg)
			} else {
				out, err = config.DumpConfig(cfg)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)
