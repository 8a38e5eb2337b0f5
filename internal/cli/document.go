package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var documentJSON bool

// documentCmd groups commands operating on the stored document
var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Show or replace the stored document",
}

var documentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored document text",
	Long: `Print the stored document text.

With --json the full snapshot is printed, including annotations and the
plain/annotated segments the text renders as.`,
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

		snap := doc.Snapshot()
		if documentJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), snap.Text)
		return err
	},
}

var documentSetCmd = &cobra.Command{
	Use:   "set [file]",
	Short: "Replace the stored document text",
	Long: `Replace the stored document text with the contents of file, or stdin
when no file is given. Annotations that no longer fit the new text are hidden
until the text grows back.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}

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

		snap := doc.SetText(text)
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Stored %d characters, %d visible annotations\n", len([]rune(snap.Text)), len(snap.Annotations))
		}
		return nil
	},
}

// readInput returns the contents of args[0], or stdin when no file is given
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentSetCmd)

	documentShowCmd.Flags().BoolVar(&documentJSON, "json", false, "print the full snapshot as JSON")
}
