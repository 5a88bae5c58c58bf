package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkawano/kanshu/internal/export"
)

func newExportCommand() *cobra.Command {
	var generatePDF bool
	var outputDir string
	command := &cobra.Command{
		Use:   "export",
		Short: "Write the library as a markdown study sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			if outputDir == "" {
				outputDir = cfg.Outputs.StudySheetDirectory
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("os.MkdirAll(%s) > %w", outputDir, err)
			}

			now := time.Now()
			markdownPath := filepath.Join(outputDir, fmt.Sprintf("study-sheet-%s.md", now.Format("2006-01-02")))
			if err := export.WriteMarkdown(markdownPath, store.Characters(), store.Vocabulary(), now); err != nil {
				return fmt.Errorf("export.WriteMarkdown > %w", err)
			}
			fmt.Printf("Wrote %s\n", markdownPath)

			if generatePDF {
				pdfPath, err := export.ConvertMarkdownToPDF(markdownPath)
				if err != nil {
					return fmt.Errorf("export.ConvertMarkdownToPDF > %w", err)
				}
				fmt.Printf("Wrote %s\n", pdfPath)
			}
			return nil
		},
	}
	command.Flags().BoolVar(&generatePDF, "pdf", false, "Also convert the study sheet to PDF")
	command.Flags().StringVar(&outputDir, "output", "", "Output directory (default from config)")
	return command
}
