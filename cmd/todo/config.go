package main

import (
	"github.com/metalagman/todo/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfig reads the config file and applies flag overrides. The default
// config file is optional; one named with --config must exist.
func loadConfig(cmd *cobra.Command, o rootOptions) (config.Config, error) {
	v := viper.New()
	if cmd.Flags().Changed("backend") {
		v.Set("storage.backend", o.backend)
	}
	return config.Load(v, o.cfgFile, cmd.Flags().Changed("config"))
}
