package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/flow/internal/annotate"
)

// annotateCmd groups side-note commands
var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Attach side notes to ranges of the stored document",
	Long: `Attach side notes to ranges of the stored document.

Offsets count characters from the start of the text; the range is half-open,
so "annotate add 4 9 speed" on "The quick brown fox" marks "quick".`,
}

var annotateAddCmd = &cobra.Command{
	Use:   "add <start> <end> <note...>",
	Short: "Annotate the range [start, end) with a note",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid start %q: %w", args[0], err)
		}
		end, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid end %q: %w", args[1], err)
		}
		note := strings.Join(args[2:], " ")

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

		a, err := doc.Annotate(start, end, note)
		if err != nil {
			return fmt.Errorf("annotate: %w", err)
		}
		if a == nil {
			// Empty selections and blank notes are dropped at the boundary.
			reason := "note is blank"
			if start == end {
				reason = "selection is empty"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Nothing annotated: %s\n", reason)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.ID)
		return nil
	},
}

var annotateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List annotations that fit the current text",
	Args:  cobra.NoArgs,
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
		runes := []rune(snap.Text)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRANGE\tANCHOR\tNOTE")
		for _, a := range annotate.Sorted(snap.Text, snap.Annotations) {
			fmt.Fprintf(w, "%s\t%d-%d\t%s\t%s\n", a.ID, a.Start, a.End, string(runes[a.Start:a.End]), a.Note)
		}
		return w.Flush()
	},
}

var annotateRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove an annotation",
	Args:    cobra.ExactArgs(1),
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

		if err := doc.RemoveAnnotation(args[0]); err != nil {
			return fmt.Errorf("remove %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.AddCommand(annotateAddCmd)
	annotateCmd.AddCommand(annotateListCmd)
	annotateCmd.AddCommand(annotateRemoveCmd)
}
