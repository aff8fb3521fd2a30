package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rkstgr/papermake-sub000/registry"
)

var listTemplatesCmd = &cobra.Command{
	Use:     "list-templates",
	Aliases: []string{"list"},
	Short:   "list published templates",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, err := openStorageDriver(loadedConfig.Storage)
		if err != nil {
			return err
		}
		reg := registry.New(driver)

		summaries, err := reg.ListTemplates(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\ttags=%s\tname=%q\tauthor=%q\n", s.FullName, strings.Join(s.Tags, ","), s.Metadata.Name, s.Metadata.Author)
		}
		return nil
	},
}
