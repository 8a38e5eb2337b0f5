package annotate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/flow/internal/model"
)

// metaSeparator divides the document from its appendix of notes
const metaSeparator = "\n\n---\nMeta:\n"

// Export renders text followed by an appendix listing every valid annotation
// as "• “anchor” → note", in start order. Without valid annotations the text
// is returned unchanged.
func Export(text string, annotations []model.Annotation) string {
	sorted := Sorted(text, annotations)
	if len(sorted) == 0 {
		return text
	}

	runes := []rune(text)
	lines := make([]string, 0, len(sorted))
	for _, a := range sorted {
		anchor := string(runes[a.Start:a.End])
		lines = append(lines, fmt.Sprintf("• “%s” → %s", anchor, a.Note))
	}

	return text + metaSeparator + strings.Join(lines, "\n")
}
