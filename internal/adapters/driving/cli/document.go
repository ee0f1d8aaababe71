package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect and annotate indexed documents",
	Long:  `List documents, show details, or attach a description or location tag.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentDescribeCmd = &cobra.Command{
	Use:   "describe [doc-id] [description]",
	Short: "Attach a free-text description",
	Long: `Sets the description of a document. Descriptions are searchable, so
they make scanned or poorly extracted documents findable.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentDescribe,
}

var documentTagCmd = &cobra.Command{
	Use:   "tag [doc-id] [location]",
	Short: "Record where the physical document lives",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentTag,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentDescribeCmd)
	documentCmd.AddCommand(documentTagCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, docs[i].Path)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:        %s\n", doc.Title)
	cmd.Printf("  Path:         %s\n", doc.Path)
	cmd.Printf("  Fingerprint:  %s\n", doc.Fingerprint)
	if doc.Description != "" {
		cmd.Printf("  Description:  %s\n", doc.Description)
	}
	if doc.LocationTag != "" {
		cmd.Printf("  Location:     %s\n", doc.LocationTag)
	}
	cmd.Printf("  Created:      %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:      %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if thumb := thumbnailPath(doc.Fingerprint); thumb != "" {
		cmd.Printf("  Thumbnail:    %s\n", thumb)
	}
	return nil
}

func runDocumentDescribe(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := documentService.SetDescription(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set description: %w", err)
	}
	cmd.Printf("Description updated for %s.\n", args[0])
	return nil
}

func runDocumentTag(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := documentService.SetLocationTag(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set location tag: %w", err)
	}
	cmd.Printf("Location tag updated for %s.\n", args[0])
	return nil
}

// thumbnailPath returns the cache path when a thumbnail store is wired.
func thumbnailPath(fingerprint string) string {
	if thumbnails == nil {
		return ""
	}
	return thumbnails.Path(fingerprint)
}
