package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkstgr/papermake-sub000/registry"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <ref>",
	Short: "resolve a reference to its manifest digest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, err := openStorageDriver(loadedConfig.Storage)
		if err != nil {
			return err
		}
		reg := registry.New(driver)

		digest, err := reg.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}
