// Package cli implements the interactive reading session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mkawano/kanshu/internal/inference"
	"github.com/mkawano/kanshu/internal/library"
	"github.com/mkawano/kanshu/internal/selection"
	"github.com/mkawano/kanshu/internal/session"
	"github.com/mkawano/kanshu/internal/srs"
)

var errEnd = errors.New("end")

var timeNow = time.Now

// SessionCLI runs interactive reading rounds: generate sentences, reveal them
// one by one, and feed the user's judgment back into the schedule.
type SessionCLI struct {
	store        *library.Store
	controller   *session.Controller
	direction    inference.Direction
	level        int
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

func NewSessionCLI(
	store *library.Store,
	generator inference.Client,
	direction inference.Direction,
	level int,
) *SessionCLI {
	return &SessionCLI{
		store:        store,
		controller:   session.NewController(store, generator),
		direction:    direction,
		level:        level,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

type Session interface {
	Session(context context.Context) error
}

func (cli *SessionCLI) Run(ctx context.Context, session Session) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := session.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Println("Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Session runs one generation round and the feedback loop over it.
func (cli *SessionCLI) Session(ctx context.Context) error {
	result, err := cli.controller.Start(ctx, cli.level, cli.direction)
	if err != nil {
		if errors.Is(err, selection.ErrNoCandidates) {
			fmt.Println("No characters to practice. Add some characters first.")
			return errEnd
		}
		return fmt.Errorf("controller.Start() > %w", err)
	}

	fmt.Printf("Generated %d sentences", len(result.Sentences))
	if result.TargetLevel != 0 {
		fmt.Printf(" around JLPT N%d", result.TargetLevel)
	}
	fmt.Println(".")
	fmt.Println()

	for i, s := range result.Sentences {
		if err := cli.reviewSentence(i+1, s); err != nil {
			return err
		}
	}

	answer, err := cli.prompt("Another round? [y/N]: ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		return errEnd
	}
	return nil
}

func (cli *SessionCLI) reviewSentence(number int, s session.SentenceWithContext) error {
	_, _ = cli.bold.Printf("%d. %s\n", number, s.Sentence.Primary)
	if _, err := cli.prompt("Press Enter to reveal..."); err != nil {
		return err
	}

	_, _ = cli.italic.Printf("   %s\n", s.Sentence.Secondary)
	for i, token := range s.Sentence.Tokens {
		fmt.Printf("   %d) %s [%s] %s\n", i+1, token.Word, token.Reading, token.Definition)
	}
	if len(s.Context) > 0 {
		fmt.Printf("   Characters: %s\n", strings.Join(s.Context, " "))
	}

	answer, err := cli.prompt("Did you read it correctly? [y/n]: ")
	if err != nil {
		return err
	}
	outcome := srs.OutcomeIncorrect
	if strings.EqualFold(answer, "y") {
		outcome = srs.OutcomeCorrect
	}
	if err := cli.controller.RecordFeedback(s, outcome); err != nil {
		return fmt.Errorf("controller.RecordFeedback() > %w", err)
	}
	if outcome == srs.OutcomeCorrect {
		color.Green("Correct.")
	} else {
		color.Red("Scheduled for another review soon.")
	}

	if len(s.Sentence.Tokens) > 0 {
		if err := cli.promoteTokens(s.Sentence.Tokens); err != nil {
			return err
		}
	}
	fmt.Println()
	return nil
}

func (cli *SessionCLI) promoteTokens(tokens []inference.Token) error {
	answer, err := cli.prompt("Save a word? Enter its number or press Enter to skip: ")
	if err != nil {
		return err
	}
	if answer == "" {
		return nil
	}

	index, err := strconv.Atoi(answer)
	if err != nil || index < 1 || index > len(tokens) {
		fmt.Println("No such word.")
		return nil
	}

	token := tokens[index-1]
	added, newCharacters, err := cli.store.PromoteToken(library.WordToken{
		Word:             token.Word,
		Reading:          token.Reading,
		Definition:       token.Definition,
		ProficiencyLevel: token.Level,
	}, timeNow())
	if err != nil {
		return fmt.Errorf("store.PromoteToken() > %w", err)
	}
	if added {
		fmt.Printf("Saved %s.\n", token.Word)
	} else {
		fmt.Printf("%s is already saved.\n", token.Word)
	}
	if len(newCharacters) > 0 {
		fmt.Printf("Now tracking: %s\n", strings.Join(newCharacters, " "))
	}
	return nil
}

func (cli *SessionCLI) prompt(question string) (string, error) {
	fmt.Fprint(cli.stdoutWriter, question)
	answer, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
