package cli

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	chatSession string
	chatDelay   time.Duration
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation about your indexed documents.

Commands:
  /reset    forget the conversation so far and re-read prompt files
  /history  show the conversation so far
  /exit     leave (also /quit or Ctrl+D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "resume a session (default: new session)")
	chatCmd.Flags().DurationVar(&chatDelay, "delay", 30*time.Millisecond,
		"pause between words when printing answers (0 disables)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := requireChat(); err != nil {
		return err
	}

	ctx := cmd.Context()
	session := chatSession
	if session == "" {
		session = uuid.NewString()
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	cmd.Println(boldGreen("docent chat"))
	cmd.Printf("Session: %s\n", session)
	if documentService != nil {
		cmd.Printf("Documents: %d indexed\n", len(documentService.List(ctx)))
	}
	cmd.Println("Type your question and press Enter. /exit to quit.")
	cmd.Println()

	delay := chatDelay
	if !isTerminal(cmd) {
		delay = 0
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print(boldGreen("You: "))
		if !scanner.Scan() {
			cmd.Println()
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := chatService.ResetSession(ctx, session); err != nil {
				cmd.PrintErrf("Error: %v\n", err)
				continue
			}
			cmd.Println("Conversation cleared.")
			cmd.Println()
			continue
		case "/history":
			if err := printHistory(cmd, session); err != nil {
				cmd.PrintErrf("Error: %v\n", err)
			}
			continue
		}

		answer, err := chatService.Ask(ctx, session, input)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		cmd.Print(boldCyan("Docent: "))
		typewrite(ctx, cmd, answer.Text, delay)
		printSources(cmd, answer.Sources)
		cmd.Println()
	}

	return scanner.Err()
}

// typewrite prints text word by word with delay between words.
func typewrite(ctx context.Context, cmd *cobra.Command, text string, delay time.Duration) {
	if delay <= 0 {
		cmd.Println(text)
		return
	}
	words := strings.SplitAfter(text, " ")
	for _, w := range words {
		cmd.Print(w)
		select {
		case <-ctx.Done():
			cmd.Println()
			return
		case <-time.After(delay):
		}
	}
	cmd.Println()
}

func printHistory(cmd *cobra.Command, session string) error {
	turns, err := chatService.History(cmd.Context(), session)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}
	for i, t := range turns {
		cmd.Printf("[%d] You: %s\n", i+1, t.User)
		cmd.Printf("    Docent: %s\n", t.Assistant)
	}
	cmd.Println()
	return nil
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
