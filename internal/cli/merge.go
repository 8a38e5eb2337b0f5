package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/flow/internal/suggest"
)

var mergeJSON bool

// mergeCmd exposes the spacing rules used when a suggestion is shown or accepted
var mergeCmd = &cobra.Command{
	Use:   "merge <base> <suggestion>",
	Short: "Join a suggestion onto text with correct spacing",
	Long: `Join a suggestion onto text the way an accepted suggestion would be.

Example:
  flow merge "bro" "thers"          # brothers
  flow merge "Hello" "world"        # Hello world
  flow merge "Hello " " world"      # Hello world`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, ok := suggest.Merge(args[0], args[1])
		if !ok {
			return fmt.Errorf("suggestion is empty")
		}
		if mergeJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), result.Merged)
		return err
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().BoolVar(&mergeJSON, "json", false, "print merged text and ghost as JSON")
}
