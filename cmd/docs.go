package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/internal/logger"
)

var (
	listSearch   string
	listCategory string
	listSort     string
	jsonOutput   bool

	docTitle       string
	docDescription string
	docCategory    string
	docTags        []string
	docFileURL     string
	docFileName    string
	docFileSize    int64
	docFileType    string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage document records through the API",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		listing, err := c.ListDocuments(cmd.Context(), documents.ListOptions{
			Search:   listSearch,
			Category: listCategory,
			Sort:     listSort,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), listing)
		}
		printListing(cmd.OutOrStdout(), listing)
		return nil
	},
}

var docsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		doc, err := c.GetDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), doc)
	},
}

var docsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document record for an uploaded file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		doc, err := c.CreateDocument(cmd.Context(), inputFromFlags(cmd, documents.Input{}))
		if err != nil {
			return err
		}
		logger.Success("Document created: %s", doc.ID)
		return printJSON(cmd.OutOrStdout(), doc)
	},
}

var docsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a document; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		existing, err := c.GetDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		doc, err := c.UpdateDocument(cmd.Context(), args[0], inputFromFlags(cmd, inputOf(existing)))
		if err != nil {
			return err
		}
		logger.Success("Document updated: %s", doc.ID)
		return printJSON(cmd.OutOrStdout(), doc)
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := c.DeleteDocument(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			logger.Success("Document deleted: %s", id)
		}
		return nil
	},
}

func init() {
	docsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Match title, description, file name or tags")
	docsListCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only this category (all for every category)")
	docsListCmd.Flags().StringVar(&listSort, "sort", documents.SortNewest, "Sort order: newest, oldest or name")
	docsListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON listing")

	for _, c := range []*cobra.Command{docsCreateCmd, docsUpdateCmd} {
		c.Flags().SortFlags = false
		c.Flags().StringVarP(&docTitle, "title", "t", "", "Document title (at least 3 characters)")
		c.Flags().StringVarP(&docDescription, "description", "d", "", "Description (at least 10 characters)")
		c.Flags().StringVarP(&docCategory, "category", "c", "", "Category: "+strings.Join(documents.Categories, ", "))
		c.Flags().StringSliceVar(&docTags, "tags", nil, "Comma-separated tags")
		c.Flags().StringVar(&docFileURL, "file-url", "", "URL of the uploaded file")
		c.Flags().StringVar(&docFileName, "file-name", "", "Original file name")
		c.Flags().Int64Var(&docFileSize, "file-size", 0, "File size in bytes")
		c.Flags().StringVar(&docFileType, "file-type", "", "File type (derived from the file name when empty)")
	}

	docsCmd.AddCommand(docsListCmd, docsGetCmd, docsCreateCmd, docsUpdateCmd, docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}

// inputFromFlags overlays the flags the user set onto base.
func inputFromFlags(cmd *cobra.Command, base documents.Input) documents.Input {
	f := cmd.Flags()
	if f.Changed("title") {
		base.Title = docTitle
	}
	if f.Changed("description") {
		base.Description = docDescription
	}
	if f.Changed("category") {
		base.Category = docCategory
	}
	if f.Changed("tags") {
		base.Tags = docTags
	}
	if f.Changed("file-url") {
		base.FileURL = docFileURL
	}
	if f.Changed("file-name") {
		base.FileName = docFileName
	}
	if f.Changed("file-size") {
		base.FileSize = docFileSize
	}
	if f.Changed("file-type") {
		base.FileType = docFileType
	}
	return base
}

func inputOf(d documents.Document) documents.Input {
	return documents.Input{
		Title:       d.Title,
		Description: d.Description,
		FileURL:     d.FileURL,
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		FileType:    d.FileType,
		Category:    d.Category,
		Tags:        d.Tags,
	}
}

func printListing(w io.Writer, listing documents.Listing) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tTYPE\tSIZE\tCREATED")
	for _, d := range listing.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Title, d.Category, strings.ToUpper(d.FileType),
			documents.FormatFileSize(d.FileSize), d.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nShowing %d of %d documents, %s in total\n",
		len(listing.Data), listing.Stats.Total, documents.FormatFileSize(listing.Stats.TotalSize))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
