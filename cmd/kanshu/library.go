package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkawano/kanshu/internal/dictionary"
	"github.com/mkawano/kanshu/internal/library"
	"github.com/mkawano/kanshu/internal/srs"
	"github.com/mkawano/kanshu/internal/vision"
)

func newLibraryCommand() *cobra.Command {
	libraryCommand := &cobra.Command{
		Use:   "library",
		Short: "Manage tracked characters",
	}

	libraryCommand.AddCommand(
		newLibraryAddCommand(),
		newLibraryRemoveCommand(),
		newLibraryListCommand(),
	)
	return libraryCommand
}

func newLibraryAddCommand() *cobra.Command {
	var imagePath string
	var level int
	command := &cobra.Command{
		Use:   "add [text...]",
		Short: "Track the Kanji found in text or an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && imagePath == "" {
				return fmt.Errorf("provide text arguments or --image")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			characters := library.ExtractKanji(strings.Join(args, ""))
			if imagePath != "" {
				if cfg.OpenAI.APIKey == "" {
					return fmt.Errorf("OPENAI_API_KEY environment variable is required for --image")
				}
				image, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("os.ReadFile(%s) > %w", imagePath, err)
				}
				extractor := vision.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.VisionModel)
				defer func() {
					_ = extractor.Close()
				}()
				extracted, err := extractor.Extract(cmd.Context(), image)
				if err != nil {
					return fmt.Errorf("extractor.Extract > %w", err)
				}
				characters = append(characters, extracted...)
			}
			if len(characters) == 0 {
				fmt.Println("No Kanji found.")
				return nil
			}

			entries := enrichCharacters(cmd.Context(), newDictionaryClient(cfg), characters, level)
			added, err := store.AddCharacters(entries, time.Now())
			if err != nil {
				return fmt.Errorf("store.AddCharacters > %w", err)
			}
			if len(added) == 0 {
				fmt.Println("All characters are already tracked.")
				return nil
			}
			fmt.Printf("Now tracking: %s\n", strings.Join(added, " "))
			return nil
		},
	}
	command.Flags().StringVar(&imagePath, "image", "", "Extract characters from an image file")
	command.Flags().IntVar(&level, "level", 0, "Proficiency level for the new characters (1-5, overrides lookup)")
	return command
}

// enrichCharacters looks up a proficiency rank for each character. A lookup
// miss never blocks insertion.
func enrichCharacters(ctx context.Context, client *dictionary.Client, characters []string, level int) []library.NewCharacter {
	entries := make([]library.NewCharacter, 0, len(characters))
	for _, character := range characters {
		entry := library.NewCharacter{Character: character, ProficiencyLevel: level}
		if level == 0 {
			result, err := client.Lookup(ctx, character)
			if err != nil && !errors.Is(err, dictionary.ErrNotFound) {
				fmt.Printf("Lookup failed for %s: %v\n", character, err)
			}
			entry.ProficiencyLevel = result.Level
		}
		entries = append(entries, entry)
	}
	return entries
}

func newLibraryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <character>",
		Short: "Stop tracking a character",
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

			if err := store.RemoveCharacter(args[0]); err != nil {
				return fmt.Errorf("store.RemoveCharacter > %w", err)
			}
			fmt.Printf("Removed %s.\n", args[0])
			return nil
		},
	}
}

func newLibraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked characters with their review status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			characters := store.Characters()
			if len(characters) == 0 {
				fmt.Println("No characters tracked yet.")
				return nil
			}

			now := time.Now()
			fmt.Printf("%-4s %-9s %-6s %-7s %-5s %s\n", "Char", "Status", "Level", "Streak", "Used", "Next review")
			for _, c := range characters {
				fmt.Printf("%-4s %-9s %-6d %-7d %-5d %s\n",
					c.Character,
					srs.Classify(c.State(), now),
					c.SRSLevel,
					c.CorrectStreak,
					c.UsedCount,
					formatReviewTime(c.NextReviewAt),
				)
			}
			return nil
		},
	}
}

func formatReviewTime(t int64) string {
	if t == 0 {
		return "-"
	}
	return time.UnixMilli(t).Format("2006-01-02 15:04")
}
