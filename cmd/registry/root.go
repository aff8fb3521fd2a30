package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkstgr/papermake-sub000/configuration"
	"github.com/rkstgr/papermake-sub000/version"
)

var (
	showVersion  bool
	configPath   string
	printConfig  bool
	loadedConfig *configuration.Configuration
)

// RootCmd is the main command for the "registry" binary.
var RootCmd = &cobra.Command{
	Use:   "registry",
	Short: "content-addressed template registry",
	Long:  "registry publishes, resolves, and renders content-addressed document templates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration()
		if err != nil {
			return err
		}
		loadedConfig = cfg

		if printConfig {
			out, err := cfg.RenderYAML()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, out)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			version.PrintVersion()
			return
		}
		// nolint:errcheck
		cmd.Usage()
	},
}

func init() {
	RootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show the version and exit")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file (defaults to an in-memory driver)")
	RootCmd.PersistentFlags().BoolVar(&printConfig, "print-config", false, "print the effective configuration to stderr before running")

	RootCmd.AddCommand(publishCmd)
	RootCmd.AddCommand(resolveCmd)
	RootCmd.AddCommand(renderCmd)
	RootCmd.AddCommand(listTemplatesCmd)
	RootCmd.AddCommand(logCmd)
}

func loadConfiguration() (*configuration.Configuration, error) {
	if configPath == "" {
		return configuration.Default(), nil
	}
	return configuration.Load(configPath)
}

