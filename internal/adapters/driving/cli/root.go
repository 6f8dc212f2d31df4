// Package cli implements the docent command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent/internal/core/ports/driving"
	"github.com/custodia-labs/docent/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Options carries the global flags to the Loader.
type Options struct {
	// DataDir overrides the configured data directory.
	DataDir string

	// Ephemeral keeps the index and sessions in memory and ignores the config file.
	Ephemeral bool
}

// Runtime holds the services commands operate on.
type Runtime struct {
	Documents driving.DocumentService
	Chat      driving.ChatService
	Settings  driving.SettingsService

	// Supports reports whether a file can be ingested, judged by its name.
	Supports func(path string) bool

	// Close releases stores and clients. May be nil.
	Close func() error
}

// Loader assembles the runtime. When full is false only Settings is needed;
// commands that only read or write configuration must work without a
// reachable vector store or AI provider.
type Loader func(ctx context.Context, opts Options, full bool) (*Runtime, error)

// annotationSettingsOnly marks commands that need nothing but settings.
const annotationSettingsOnly = "settings-only"

var (
	loader  Loader
	current *Runtime
	opts    Options
	verbose bool

	documentService driving.DocumentService
	chatService     driving.ChatService
	settingsService driving.SettingsService
	supports        func(path string) bool
)

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Ask questions about your documents",
	Long: `Docent indexes PDF and text documents and answers questions about them
using retrieval-augmented generation. Answers cite the documents they draw on
and follow-up questions keep the conversation's context.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.docent/data)")
	rootCmd.PersistentFlags().BoolVar(&opts.Ephemeral, "ephemeral", false,
		"keep the index and sessions in memory only")
}

// SetLoader installs the function that builds services for each command.
func SetLoader(l Loader) {
	loader = l
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupRuntime(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsRuntime(cmd) || loader == nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := loader(ctx, opts, !settingsOnly(cmd))
	if err != nil {
		return err
	}
	current = rt
	documentService = rt.Documents
	chatService = rt.Chat
	settingsService = rt.Settings
	if rt.Supports != nil {
		supports = rt.Supports
	}
	return nil
}

func closeRuntime() error {
	if current == nil || current.Close == nil {
		return nil
	}
	err := current.Close()
	current = nil
	if err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	return nil
}

func needsRuntime(cmd *cobra.Command) bool {
	return cmd != versionCmd && cmd.Name() != "help" && cmd.Name() != "completion"
}

func settingsOnly(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSettingsOnly] == "true" {
			return true
		}
	}
	return false
}

func requireDocuments() error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

func requireChat() error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	return nil
}
