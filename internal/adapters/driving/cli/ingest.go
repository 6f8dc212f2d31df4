package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ingestInPlace bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to the index",
	Long: `Extracts the text of each file, splits it into chunks and indexes them.

Files are copied into the data directory first so the index does not depend
on the original location. Use --in-place to index files where they are.
Re-ingesting a file with the same name replaces the earlier version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestInPlace, "in-place", false, "index files without copying them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	var failed []error
	for _, path := range args {
		var (
			name = path
			n    int
			err  error
		)
		if ingestInPlace {
			n, err = documentService.Ingest(cmd.Context(), path)
		} else {
			name, n, err = documentService.Import(cmd.Context(), path)
		}
		if err != nil {
			cmd.Printf("%s %s: %v\n", bad("✗"), path, err)
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		cmd.Printf("%s %s (%d chunks)\n", ok("✓"), name, n)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d documents failed: %w", len(failed), len(args), errors.Join(failed...))
	}
	return nil
}
