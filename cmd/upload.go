package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/uploads"
	"github.com/fbz-tec/docvault/internal/logger"
	"github.com/fbz-tec/docvault/internal/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file, optionally creating its document record",
	Long: `Upload a file to the API. Accepted types: ` + fmt.Sprint(uploads.AllowedExtensions) + `.

With --title the document record is created as well, using the stored
file's URL, name, size and type.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().SortFlags = false
	uploadCmd.Flags().StringVarP(&docTitle, "title", "t", "", "Create a document record with this title")
	uploadCmd.Flags().StringVarP(&docDescription, "description", "d", "", "Description of the document record")
	uploadCmd.Flags().StringVarP(&docCategory, "category", "c", "", "Category of the document record")
	uploadCmd.Flags().StringSliceVar(&docTags, "tags", nil, "Comma-separated tags")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	// Fail before sending anything the server would refuse.
	if _, err := uploads.CheckType(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	c, err := apiClient()
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	var bar *ui.ProgressBar
	if !logger.IsQuiet() {
		bar = ui.NewPercentBar("Uploading " + name)
	}

	res, err := c.Upload(cmd.Context(), name, f, info.Size(), func(percent int) {
		bar.Set(percent)
	})
	if err != nil {
		return err
	}
	bar.Finish()
	logger.Success("Uploaded %s (%s) -> %s", res.Name, documents.FormatFileSize(res.Size), res.URL)

	if docTitle == "" {
		return printJSON(cmd.OutOrStdout(), res)
	}

	doc, err := c.CreateDocument(cmd.Context(), documents.Input{
		Title:       docTitle,
		Description: docDescription,
		Category:    docCategory,
		Tags:        docTags,
		FileURL:     res.URL,
		FileName:    res.Name,
		FileSize:    res.Size,
		FileType:    res.FileType,
	})
	if err != nil {
		return fmt.Errorf("file uploaded to %s but creating the document failed: %w", res.URL, err)
	}
	logger.Success("Document created: %s", doc.ID)
	return printJSON(cmd.OutOrStdout(), doc)
}
