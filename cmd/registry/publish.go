package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rkstgr/papermake-sub000/bundle"
	"github.com/rkstgr/papermake-sub000/reference"
	"github.com/rkstgr/papermake-sub000/registry"
)

var (
	publishAuthor     string
	publishName       string
	publishExtraFiles []string
)

var publishCmd = &cobra.Command{
	Use:   "publish <entrypoint.typ> <ref>",
	Short: "publish a template bundle under a reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entrypointPath, referenceText := args[0], args[1]

		ref, err := reference.Parse(referenceText)
		if err != nil {
			return fmt.Errorf("invalid reference: %w", err)
		}

		entrypoint, err := os.ReadFile(entrypointPath)
		if err != nil {
			return fmt.Errorf("reading entrypoint: %w", err)
		}

		name := publishName
		if name == "" {
			name = ref.Name
		}

		b := bundle.New(entrypoint, bundle.Metadata{Name: name, Author: publishAuthor})
		for _, pair := range publishExtraFiles {
			path, filePath, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid --file %q, expected path=localfile", pair)
			}
			contents, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("reading extra file %q: %w", filePath, err)
			}
			if err := b.AddFile(path, contents); err != nil {
				return err
			}
		}

		driver, err := openStorageDriver(loadedConfig.Storage)
		if err != nil {
			return err
		}
		reg := registry.New(driver)

		digest, err := reg.Publish(cmd.Context(), b, ref.NamespacePath(), ref.Tag)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishAuthor, "author", "", "template author metadata (required)")
	publishCmd.Flags().StringVar(&publishName, "name", "", "template name metadata (defaults to the reference's name)")
	publishCmd.Flags().StringArrayVar(&publishExtraFiles, "file", nil, "additional file to stage, as path=localfile (repeatable)")
	_ = publishCmd.MarkFlagRequired("author")
}
