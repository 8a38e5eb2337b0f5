package annotate

import (
	"testing"

	"github.com/ppiankov/flow/internal/model"
)

func TestExport(t *testing.T) {
	text := "The quick brown fox"
	annotations := []model.Annotation{
		{ID: "2", Start: 16, End: 19, Note: "animal"},
		{ID: "1", Start: 4, End: 9, Note: "speed"},
		{ID: "3", Start: 10, End: 99, Note: "stale"},
	}

	want := "The quick brown fox\n\n---\nMeta:\n• “quick” → speed\n• “fox” → animal"
	if got := Export(text, annotations); got != want {
		t.Errorf("Export() =\n%q\nwant\n%q", got, want)
	}
}

func TestExport_NoValidAnnotations(t *testing.T) {
	text := "short"
	if got := Export(text, nil); got != text {
		t.Errorf("Export() = %q, want text unchanged", got)
	}
	if got := Export(text, []model.Annotation{{ID: "x", Start: 0, End: 10, Note: "gone"}}); got != text {
		t.Errorf("Export() = %q, want text unchanged", got)
	}
}

func TestExport_MultibyteAnchor(t *testing.T) {
	text := "café au lait"
	got := Export(text, []model.Annotation{{ID: "a", Start: 0, End: 4, Note: "drink"}})
	want := "café au lait\n\n---\nMeta:\n• “café” → drink"
	if got != want {
		t.Errorf("Export() = %q, want %q", got, want)
	}
}
