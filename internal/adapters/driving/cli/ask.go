package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// defaultSession is used when no --session flag is given.
const defaultSession = "default"

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the passages most relevant to the question and asks the
language model to answer from them. Questions in the same session share
history, so follow-ups can refer to earlier answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", defaultSession, "conversation session id")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireChat(); err != nil {
		return err
	}

	question := strings.Join(args, " ")
	answer, err := chatService.Ask(cmd.Context(), askSession, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	printSources(cmd, answer.Sources)
	return nil
}

type answerJSON struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	State   string   `json:"state"`
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	data, err := json.MarshalIndent(answerJSON{
		Answer:  answer.Text,
		Sources: sources,
		State:   answer.State.String(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printSources(cmd *cobra.Command, sources []string) {
	if len(sources) == 0 {
		return
	}
	dim := color.New(color.Faint).SprintFunc()
	cmd.Println()
	cmd.Println(dim("Sources: " + strings.Join(sources, ", ")))
}
