package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkstgr/papermake-sub000/compiler"
	"github.com/rkstgr/papermake-sub000/render"
	"github.com/rkstgr/papermake-sub000/registry"
)

var (
	renderDataPath string
	renderOutPath  string
)

var renderCmd = &cobra.Command{
	Use:   "render <ref>",
	Short: "render a template reference to PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := map[string]any{}
		if renderDataPath != "" {
			raw, err := os.ReadFile(renderDataPath)
			if err != nil {
				return fmt.Errorf("reading --data file: %w", err)
			}
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("parsing --data file as JSON: %w", err)
			}
		}

		driver, err := openStorageDriver(loadedConfig.Storage)
		if err != nil {
			return err
		}
		reg := registry.New(driver)

		log, err := openRenderLog(cmd.Context(), loadedConfig.RenderLog)
		if err != nil {
			return err
		}

		// The real document compiler is an external collaborator the
		// core only depends on through the Compiler interface; this
		// CLI ships the deterministic Fake until a production Typst
		// toolchain is wired in behind the same interface.
		orch := render.New(driver, reg, compiler.Fake{}, log, loadedConfig.PDFPersist)

		result, err := orch.Render(cmd.Context(), args[0], data)
		if err != nil {
			return err
		}

		if renderOutPath == "" {
			_, err := cmd.OutOrStdout().Write(result.PDF)
			return err
		}
		return os.WriteFile(renderOutPath, result.PDF, 0o644)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderDataPath, "data", "", "path to a JSON file of render input data")
	renderCmd.Flags().StringVarP(&renderOutPath, "output", "o", "", "path to write the rendered PDF (defaults to stdout)")
}
