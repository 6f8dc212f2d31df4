package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/watcher"
)

var (
	watchSkipExisting bool
	watchDebounce     time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Keep the index in sync with a directory",
	Long: `Indexes the supported documents in a directory, then re-indexes files
as they are added or edited and removes them from the index when they are
deleted. Files are indexed where they are, without copying.

Stops on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipExisting, "skip-existing", false,
		"do not index files already in the directory")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"wait this long after the last change to a file before indexing it")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	w, err := watcher.New(args[0], supports, watchDebounce)
	if err != nil {
		return err
	}

	if !watchSkipExisting {
		paths, err := w.Existing()
		if err != nil {
			w.Close()
			return err
		}
		for _, p := range paths {
			applyChange(cmd, watcher.Change{Path: p, Kind: watcher.ChangeUpserted})
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context(), func(c watcher.Change) {
		applyChange(cmd, c)
	})
}

// applyChange mirrors one file change into the index. Failures are reported
// and the watch continues.
func applyChange(cmd *cobra.Command, c watcher.Change) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	ctx := cmd.Context()

	name, err := domain.DocumentName(c.Path)
	if err != nil {
		cmd.Printf("%s %s: %v\n", bad("✗"), c.Path, err)
		return
	}

	switch c.Kind {
	case watcher.ChangeRemoved:
		if err := documentService.Delete(ctx, name); err != nil {
			cmd.Printf("%s %s: %v\n", bad("✗"), name, err)
			return
		}
		cmd.Printf("%s %s removed\n", ok("-"), name)
	default:
		n, err := documentService.Ingest(ctx, c.Path)
		if err != nil {
			cmd.Printf("%s %s: %v\n", bad("✗"), name, fmt.Errorf("indexing: %w", err))
			return
		}
		cmd.Printf("%s %s (%d chunks)\n", ok("✓"), name, n)
	}
}
