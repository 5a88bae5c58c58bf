package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkawano/kanshu/internal/dictionary"
	"github.com/mkawano/kanshu/internal/library"
)

func newVocabCommand() *cobra.Command {
	vocabCommand := &cobra.Command{
		Use:   "vocab",
		Short: "Manage vocabulary words",
	}

	vocabCommand.AddCommand(
		newVocabAddCommand(),
		newVocabListCommand(),
		newVocabImportCommand(),
	)
	return vocabCommand
}

func newVocabAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <word>...",
		Short: "Save words and track the Kanji they contain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}
			client := newDictionaryClient(cfg)

			for _, word := range args {
				token := library.WordToken{Word: word}
				entry, err := client.Lookup(cmd.Context(), word)
				if err != nil && !errors.Is(err, dictionary.ErrNotFound) {
					fmt.Printf("Lookup failed for %s: %v\n", word, err)
				}
				token.Reading = entry.Reading
				token.Definition = entry.Definition
				token.ProficiencyLevel = entry.Level

				added, newCharacters, err := store.PromoteToken(token, time.Now())
				if err != nil {
					return fmt.Errorf("store.PromoteToken > %w", err)
				}
				if added {
					fmt.Printf("Saved %s.\n", word)
				} else {
					fmt.Printf("%s is already saved.\n", word)
				}
				if len(newCharacters) > 0 {
					fmt.Printf("Now tracking: %s\n", strings.Join(newCharacters, " "))
				}
			}
			return nil
		},
	}
}

func newVocabListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved words",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			vocabulary := store.Vocabulary()
			if len(vocabulary) == 0 {
				fmt.Println("No words saved yet.")
				return nil
			}
			for _, item := range vocabulary {
				fmt.Printf("%s [%s] %s\n", item.Word, item.Reading, item.Definition)
			}
			return nil
		},
	}
}

func newVocabImportCommand() *cobra.Command {
	var sheetName string
	command := &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Import words from an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			importConfig := library.DefaultImportConfig()
			if sheetName != "" {
				importConfig.SheetName = sheetName
			}
			result, err := store.ImportVocabulary(args[0], importConfig, time.Now())
			if err != nil {
				return fmt.Errorf("store.ImportVocabulary > %w", err)
			}

			fmt.Printf("Processed %d rows: %d words added, %d skipped.\n",
				result.TotalProcessed, result.WordsAdded, result.WordsSkipped)
			if len(result.CharactersAdded) > 0 {
				fmt.Printf("Now tracking: %s\n", strings.Join(result.CharactersAdded, " "))
			}
			for _, message := range result.Errors {
				fmt.Printf("Warning: %s\n", message)
			}
			return nil
		},
	}
	command.Flags().StringVar(&sheetName, "sheet", "", "Worksheet name (default Sheet1)")
	return command
}
