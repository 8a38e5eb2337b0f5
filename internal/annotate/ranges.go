// Package annotate keeps side-note ranges valid against mutable text and
// renders the text as ordered plain and annotated segments.
//
// Ranges are plain values. Offsets are never remapped across edits; an
// annotation that no longer fits the current text is dropped by Clamp.
package annotate

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ppiankov/flow/internal/model"
)

var (
	ErrEmptyRange = errors.New("annotation range is empty")
	ErrEmptyNote  = errors.New("annotation note is empty")
	ErrOutOfRange = errors.New("annotation range is outside the text")
	ErrOverlap    = errors.New("annotation overlaps an existing annotation")
	ErrNotFound   = errors.New("annotation not found")
)

// Segment is a contiguous span of the text, annotated or plain
type Segment struct {
	Text       string            `json:"text"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Annotation *model.Annotation `json:"annotation,omitempty"`
}

// Annotated reports whether the segment carries a note
func (s Segment) Annotated() bool {
	return s.Annotation != nil
}

// Clamp drops every annotation that is empty or no longer fits text.
// Relative order of the survivors is preserved.
func Clamp(text string, annotations []model.Annotation) []model.Annotation {
	length := utf8.RuneCountInString(text)
	valid := make([]model.Annotation, 0, len(annotations))
	for _, a := range annotations {
		if a.Start < 0 || a.Len() == 0 || a.End > length {
			continue
		}
		valid = append(valid, a)
	}
	return valid
}

// Sorted returns the clamped annotations ordered by start; ties keep input order
func Sorted(text string, annotations []model.Annotation) []model.Annotation {
	valid := Clamp(text, annotations)
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start < valid[j].Start
	})
	return valid
}

// Segments partitions text into plain and annotated spans with no gaps.
// When ranges overlap, the one that starts first (or was created first on a
// tie) wins and the later one is not rendered.
func Segments(text string, annotations []model.Annotation) []Segment {
	runes := []rune(text)
	sorted := Sorted(text, annotations)

	segments := make([]Segment, 0, 2*len(sorted)+1)
	cursor := 0
	for i := range sorted {
		a := sorted[i]
		if a.Start < cursor {
			continue
		}
		if a.Start > cursor {
			segments = append(segments, Segment{
				Text:  string(runes[cursor:a.Start]),
				Start: cursor,
				End:   a.Start,
			})
		}
		segments = append(segments, Segment{
			Text:       string(runes[a.Start:a.End]),
			Start:      a.Start,
			End:        a.End,
			Annotation: &sorted[i],
		})
		cursor = a.End
	}

	if cursor < len(runes) {
		segments = append(segments, Segment{
			Text:  string(runes[cursor:]),
			Start: cursor,
			End:   len(runes),
		})
	}

	return segments
}

// New creates an annotation with a fresh id. The note is trimmed.
func New(start, end int, note string) (model.Annotation, error) {
	if start >= end {
		return model.Annotation{}, ErrEmptyRange
	}
	if start < 0 {
		return model.Annotation{}, ErrOutOfRange
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return model.Annotation{}, ErrEmptyNote
	}
	return model.Annotation{
		ID:    uuid.NewString(),
		Start: start,
		End:   end,
		Note:  note,
	}, nil
}

// Add validates candidate against text and the existing annotations and
// returns a new slice with it appended.
func Add(text string, existing []model.Annotation, candidate model.Annotation) ([]model.Annotation, error) {
	if candidate.End > utf8.RuneCountInString(text) {
		return nil, ErrOutOfRange
	}
	for _, a := range Clamp(text, existing) {
		if Overlaps(a, candidate) {
			return nil, ErrOverlap
		}
	}
	out := make([]model.Annotation, 0, len(existing)+1)
	out = append(out, existing...)
	return append(out, candidate), nil
}

// Overlaps reports whether two half-open ranges share at least one character
func Overlaps(a, b model.Annotation) bool {
	return a.Start < b.End && b.Start < a.End
}

// Remove filters out the annotation with the given id
func Remove(annotations []model.Annotation, id string) ([]model.Annotation, error) {
	out := make([]model.Annotation, 0, len(annotations))
	found := false
	for _, a := range annotations {
		if a.ID == id {
			found = true
			continue
		}
		out = append(out, a)
	}
	if !found {
		return annotations, ErrNotFound
	}
	return out, nil
}
