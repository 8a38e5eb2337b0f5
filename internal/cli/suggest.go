package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ppiankov/flow/internal/suggest"
)

var (
	suggestTimeout time.Duration
	suggestMerged  bool
	suggestJSON    bool
	suggestNoCache bool
)

// suggestCmd requests one continuation for a text
var suggestCmd = &cobra.Command{
	Use:   "suggest [file]",
	Short: "Suggest a continuation for text from a file or stdin",
	Long: `Suggest one short continuation for the end of the given text.

Only the last characters of the text are sent to the provider. When no
acceptable suggestion comes back, nothing is printed.

Example:
  echo "The meeting ran long, so" | flow suggest
  flow suggest draft.txt --merged
  FLOW_LLM_PROVIDER=openai flow suggest draft.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().DurationVar(&suggestTimeout, "timeout", 20*time.Second, "overall request timeout")
	suggestCmd.Flags().BoolVar(&suggestMerged, "merged", false, "print the full text with the suggestion applied")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print suggestion, ghost and merged text as JSON")
	suggestCmd.Flags().BoolVar(&suggestNoCache, "no-cache", false, "disable the suggestion cache")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if suggestNoCache {
		cfg.Cache.Enabled = false
	}

	completer, err := newCompleter(cfg, log.Logger)
	if err != nil {
		return err
	}
	if !completer.IsEnabled() {
		return fmt.Errorf("no suggestion provider configured (set llm.provider and its API key)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), suggestTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Provider: %s\n", completer.ProviderName())
	}

	suggestion, ok := completer.Suggest(ctx, text)
	if !ok {
		if verbose {
			fmt.Fprintln(os.Stderr, "No suggestion")
		}
		return nil
	}

	result, ok := suggest.Merge(text, suggestion)
	if !ok {
		return nil
	}

	switch {
	case suggestJSON:
		return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
			Suggestion string `json:"suggestion"`
			Ghost      string `json:"ghost"`
			Merged     string `json:"merged"`
		}{suggestion, result.Ghost, result.Merged})
	case suggestMerged:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Merged)
	default:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Ghost)
	}
	return err
}
