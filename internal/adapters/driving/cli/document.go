package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage corpus documents",
	Long:  `Upload, list, and delete the documents queries are answered from.`,
}

// uploadText holds inline text passed via --text instead of a file.
var uploadText string

// uploadCompany tags the upload with a company name.
var uploadCompany string

var docsUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document to the corpus",
	Long: `Uploads a file (or inline text via --text) into the corpus. Large
files are split into parts so retrieval stays granular.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocsUpload,
}

// listLimit caps the listing.
var listLimit int

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus documents",
	RunE:  runDocsList,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document from the corpus and the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

func init() {
	docsUploadCmd.Flags().StringVar(&uploadText, "text", "", "Inline document text instead of a file")
	docsUploadCmd.Flags().StringVar(&uploadCompany, "company", "", "Company name to tag the document with")
	docsListCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum documents to list")

	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsUpload(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	defer closeServices()

	if documentService == nil {
		return errors.New("document service not configured")
	}

	metadata := map[string]any{}
	if uploadCompany != "" {
		metadata["company"] = uploadCompany
	}

	ctx := cmd.Context()

	if uploadText != "" {
		if len(args) > 0 {
			return errors.New("pass either a file or --text, not both")
		}
		id, err := documentService.UploadText(ctx, uploadText, metadata)
		if err != nil {
			return fmt.Errorf("failed to upload text: %w", err)
		}
		cmd.Printf("Document uploaded: %s\n", id)
		return nil
	}

	if len(args) == 0 {
		return errors.New("pass a file to upload, or use --text")
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	ids, err := documentService.UploadFile(ctx, f, filepath.Base(path), mimeType, metadata)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}

	if len(ids) == 1 {
		cmd.Printf("Document uploaded: %s\n", ids[0])
	} else {
		cmd.Printf("Document uploaded as %d parts:\n", len(ids))
		for _, id := range ids {
			cmd.Printf("  %s\n", id)
		}
	}
	return nil
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	defer closeServices()

	if documentService == nil {
		return errors.New("document service not configured")
	}

	previews, err := documentService.List(cmd.Context(), listLimit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(previews) == 0 {
		cmd.Println("No documents in the corpus.")
		return nil
	}

	for _, p := range previews {
		cmd.Println(labelStyle.Render(p.ID))
		if company, ok := p.Metadata["company"]; ok {
			cmd.Printf("  Company: %v\n", company)
		}
		cmd.Printf("  %s\n\n", p.Content)
	}
	cmd.Printf("Total: %d documents\n", len(previews))
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	defer closeServices()

	if documentService == nil {
		return errors.New("document service not configured")
	}

	id := args[0]
	if err := documentService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", id)
	return nil
}
