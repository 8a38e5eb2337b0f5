package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportComments bool
	exportOut      string
)

// exportCmd writes the document, optionally with its notes appendix
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored document as plain text",
	Long: `Export the stored document as plain text.

With --comments, every annotation is listed after the text:

  <text>

  ---
  Meta:
  • “anchor” → note`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, st, err := openDocument(cfg, nil)
		if err != nil {
			return err
		}
		defer st.Close()
		defer doc.Close()

		out := doc.Export(exportComments)
		if exportOut == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		}
		if err := os.WriteFile(exportOut, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Exported to %s\n", exportOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportComments, "comments", false, "append annotations as a notes section")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
}
