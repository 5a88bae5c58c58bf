package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mkawano/kanshu/internal/cli"
	"github.com/mkawano/kanshu/internal/inference"
	"github.com/mkawano/kanshu/internal/inference/openai"
)

type DirectionFlag string

// Set implements pflag.Value.
func (d *DirectionFlag) Set(v string) error {
	switch v {
	case string(DirectionJapanese):
		*d = DirectionJapanese
	case string(DirectionEnglish):
		*d = DirectionEnglish
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, DirectionJapanese, DirectionEnglish)
	}
	return nil
}

// String implements pflag.Value.
func (d *DirectionFlag) String() string {
	if d == nil {
		return ""
	}
	return string(*d)
}

// Type implements pflag.Value.
func (d *DirectionFlag) Type() string {
	return "DirectionFlag"
}

var (
	_ pflag.Value = (*DirectionFlag)(nil)
)

const (
	// DirectionJapanese shows the Japanese sentence first.
	DirectionJapanese DirectionFlag = "japanese"
	// DirectionEnglish shows the translation first.
	DirectionEnglish DirectionFlag = "english"
)

func (d DirectionFlag) toInference() inference.Direction {
	if d == DirectionEnglish {
		return inference.DirectionNativeFirst
	}
	return inference.DirectionForeignFirst
}

func newSessionCommand() *cobra.Command {
	directionFlag := DirectionJapanese
	var level int
	command := &cobra.Command{
		Use:   "session",
		Short: "Start an interactive reading session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
			}
			fmt.Printf("Using OpenAI provider (model: %s)\n", cfg.OpenAI.Model)
			openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.RetryAttempts)
			defer func() {
				_ = openaiClient.Close()
			}()

			sessionCLI := cli.NewSessionCLI(store, openaiClient, directionFlag.toInference(), level)
			fmt.Println("Interactive reading session started!")
			fmt.Println()
			return sessionCLI.Run(context.Background(), sessionCLI)
		},
	}
	command.Flags().Var(&directionFlag, "direction", "Which language leads a sentence. Options: japanese, english")
	command.Flags().IntVar(&level, "level", 0, "Only practice characters of one proficiency level (1-5)")
	return command
}
