package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage conversation sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionHistory,
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset [session-id]",
	Short: "Forget a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionReset,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if err := requireChat(); err != nil {
		return err
	}

	sessions, err := chatService.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		cmd.Println("No active sessions.")
		return nil
	}
	for _, s := range sessions {
		cmd.Println(s)
	}
	return nil
}

func runSessionHistory(cmd *cobra.Command, args []string) error {
	if err := requireChat(); err != nil {
		return err
	}
	if err := printHistory(cmd, args[0]); err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	if err := requireChat(); err != nil {
		return err
	}
	if err := chatService.ResetSession(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	cmd.Printf("Session %s cleared\n", args[0])
	return nil
}
