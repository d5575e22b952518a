package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wslkit/wslkit/pkg/config"
)

var configShowDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: MsgConfigShort,
	Long: `Print the effective configuration as TOML: built-in defaults layered
with /etc/wslkit.toml and $XDG_CONFIG_HOME/wslkit/config.toml. Use
--defaults to see the built-ins alone, e.g. as a starting point for an
override file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.Config
			err error
		)
		if configShowDefaults {
			cfg, err = config.Default()
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		out, err := config.Dump(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configShowDefaults, "defaults", false, "Show built-in defaults, ignoring override files")
}
