package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/hbollon/go-edlib"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a
// "did you mean" suggestion.
const suggestionThreshold = 0.8

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List or delete indexed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Remove a document from the index",
	Long:  `Removes every indexed chunk of the document and its stored copy.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentListJSON bool

func init() {
	documentListCmd.Flags().BoolVar(&documentListJSON, "json", false, "output documents as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	docs, err := documentService.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentListJSON {
		return outputDocumentsJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed. Add some with 'docent ingest <file>'.")
		return nil
	}

	total := 0
	for _, d := range docs {
		cmd.Printf("  %-40s %4d chunks\n", d.Name, d.ChunkCount)
		total += d.ChunkCount
	}
	cmd.Printf("\n%d documents, %d chunks\n", len(docs), total)
	return nil
}

type documentJSON struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

func outputDocumentsJSON(cmd *cobra.Command, docs []domain.DocumentInfo) error {
	out := make([]documentJSON, len(docs))
	for i, d := range docs {
		out[i] = documentJSON{Name: d.Name, Chunks: d.ChunkCount}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	name := args[0]
	known := documentService.List(cmd.Context())
	if !slices.Contains(known, name) {
		msg := fmt.Sprintf("document %q is not indexed", name)
		if s := suggest(name, known); len(s) > 0 {
			msg += fmt.Sprintf(" (did you mean %q?)", s[0])
		}
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	}

	if err := documentService.Delete(cmd.Context(), name); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted %s\n", name)
	return nil
}

// suggest returns candidates similar to name, most similar first.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name  string
		score float32
	}
	var matches []scored
	for _, c := range candidates {
		if s := edlib.JaroWinklerSimilarity(name, c); s >= suggestionThreshold {
			matches = append(matches, scored{c, s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
