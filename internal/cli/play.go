package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quizzy-service/internal/client"
	"quizzy-service/internal/domain"
	"quizzy-service/internal/session"
	"github.com/spf13/cobra"
)

// NewPlayCmd builds the terminal quiz client.
func NewPlayCmd() *cobra.Command {
	var (
		serverURL string
		name      string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a timed quiz against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), serverURL, name, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the quiz server")
	cmd.Flags().StringVar(&name, "name", "", "display name (prompted when empty)")
	return cmd
}

// runPlay drives one quiz attempt: name entry, question loop under the
// countdown, submission, and the result summary. Ticks and stdin lines are
// just events on channels; the controller decides what each one means.
func runPlay(ctx context.Context, serverURL, name string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	lines := readLines(reader)

	ctrl := session.New()
	if _, err := resolveName(ctrl, name, lines, out); err != nil {
		return err
	}

	api := client.New(serverURL)
	questions, err := api.FetchQuestions(ctx)
	if err != nil {
		ctrl.FailLoad(err)
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if err := ctrl.BeginQuiz(questions); err != nil {
		return fmt.Errorf("failed to start quiz: %w", err)
	}

	fmt.Fprintf(out, "\nWelcome, %s! You have %s to answer %d questions.\n",
		ctrl.Name(), session.FormatClock(session.TimeLimitSeconds), len(questions))

	if err := questionLoop(ctx, ctrl, lines, out); err != nil {
		return err
	}

	elapsed := ctrl.ElapsedSeconds()
	result, err := api.SubmitQuiz(ctx, ctrl.Name(), ctrl.Answers(), elapsed)
	if err != nil {
		ctrl.FailSubmit(err)
		return fmt.Errorf("failed to submit quiz: %w", err)
	}
	if err := ctrl.Complete(result); err != nil {
		return err
	}

	printResults(out, result, elapsed)
	printLeaderboard(ctx, api, out)
	return nil
}

// resolveName validates the flag value or keeps prompting until a valid name
// arrives, mirroring the field-level errors of the browser client.
func resolveName(ctrl *session.Controller, name string, lines <-chan string, out io.Writer) (string, error) {
	for {
		if strings.TrimSpace(name) != "" {
			if err := ctrl.Start(name); err == nil {
				return ctrl.Name(), nil
			} else if err == session.ErrBadTransition {
				return "", err
			} else {
				fmt.Fprintf(out, "%s\n", capitalize(err.Error()))
			}
		}
		fmt.Fprint(out, "Enter your name: ")
		line, ok := <-lines
		if !ok {
			return "", io.ErrUnexpectedEOF
		}
		name = line
	}
}

// questionLoop walks the sample linearly. Entering a valid option letter
// both records the answer and advances; the countdown can force submission
// at any moment, unanswered question included.
func questionLoop(ctx context.Context, ctrl *session.Controller, lines <-chan string, out io.Writer) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		question, ok := ctrl.CurrentQuestion()
		if !ok {
			return nil
		}
		printQuestion(out, ctrl, question)

		advanced := false
		for !advanced {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line, ok := <-lines:
				if !ok {
					return io.ErrUnexpectedEOF
				}
				label := strings.ToUpper(strings.TrimSpace(line))
				if err := ctrl.Select(label); err != nil {
					fmt.Fprintln(out, "Please answer with a letter A-D.")
					continue
				}
				submit, err := ctrl.Advance()
				if err != nil {
					return err
				}
				if submit {
					fmt.Fprintln(out, "\nAll questions answered, submitting...")
					return nil
				}
				advanced = true
			case <-ticker.C:
				if ctrl.Tick() {
					fmt.Fprintln(out, "\nTime is up! Submitting your answers...")
					return nil
				}
				if ctrl.Remaining() == 60 {
					fmt.Fprintln(out, "(one minute left)")
				}
			}
		}
	}
}

func printQuestion(out io.Writer, ctrl *session.Controller, q domain.QuestionSummary) {
	current, total := ctrl.Progress()
	fmt.Fprintf(out, "\n[%s] Question %d of %d\n", session.FormatClock(ctrl.Remaining()), current, total)
	fmt.Fprintf(out, "%s\n", q.Prompt)
	for _, label := range []string{domain.OptionA, domain.OptionB, domain.OptionC, domain.OptionD} {
		fmt.Fprintf(out, "  %s. %s\n", label, q.Option(label))
	}
	fmt.Fprint(out, "> ")
}

func printResults(out io.Writer, result domain.GradeResult, elapsed int) {
	incorrect := result.Total - result.Score
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%)\n", result.Score, result.Total, result.Percentage)
	fmt.Fprintf(out, "Correct: %d  Incorrect: %d  Time: %s\n", result.Score, incorrect, session.FormatClock(elapsed))
}

func printLeaderboard(ctx context.Context, api *client.Client, out io.Writer) {
	entries, err := api.Leaderboard(ctx)
	if err != nil || len(entries) == 0 {
		return
	}
	fmt.Fprintln(out, "\nLeaderboard:")
	for i, entry := range entries {
		fmt.Fprintf(out, "%2d. %-20s %d/%d\n", i+1, entry.UserName, entry.Score, entry.TotalQuestions)
	}
}

// readLines feeds trimmed stdin lines into a channel so the question loop can
// select between user input and countdown ticks.
func readLines(reader *bufio.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if line != "" {
					lines <- strings.TrimRight(line, "\r\n")
				}
				return
			}
			lines <- strings.TrimRight(line, "\r\n")
		}
	}()
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
