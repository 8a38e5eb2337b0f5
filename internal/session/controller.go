// Package session owns the document buffer and coordinates suggestion
// requests, ghost text, annotations and persistence for one editor.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/flow/internal/annotate"
	"github.com/ppiankov/flow/internal/model"
	"github.com/ppiankov/flow/internal/suggest"
	"github.com/ppiankov/flow/internal/worker"
)

// DefaultDebounce is the quiet period after an edit before a suggestion is requested
const DefaultDebounce = 700 * time.Millisecond

// Suggester produces a sanitized continuation for text, or false for none
type Suggester interface {
	Suggest(ctx context.Context, text string) (string, bool)
}

// Persister stores and restores the document snapshot
type Persister interface {
	Load() (*model.StoredState, bool)
	Save(state model.StoredState)
}

// Snapshot is a consistent view of the controller state
type Snapshot struct {
	Text        string             `json:"text"`
	Ghost       string             `json:"ghost"`
	Suggestion  string             `json:"suggestion,omitempty"`
	Annotations []model.Annotation `json:"annotations"`
	Segments    []annotate.Segment `json:"segments"`
}

// Controller is safe for concurrent use
type Controller struct {
	suggester Suggester
	persister Persister
	debouncer *worker.Debouncer
	logger    zerolog.Logger
	onChange  func(Snapshot)

	mu          sync.Mutex
	text        string
	annotations []model.Annotation
	suggestion  string
	ghost       string
}

// Option configures a Controller
type Option func(*Controller)

// WithDebounce overrides the quiet period before a suggestion request
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debouncer = worker.NewDebouncer(d)
	}
}

// WithLogger sets the controller logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithOnChange registers a callback fired after a suggestion arrives or is cleared asynchronously
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a controller. persister may be nil to disable persistence.
func New(suggester Suggester, persister Persister, opts ...Option) *Controller {
	c := &Controller{
		suggester: suggester,
		persister: persister,
		debouncer: worker.NewDebouncer(DefaultDebounce),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore loads the persisted snapshot, if any, and schedules a suggestion for it
func (c *Controller) Restore() bool {
	if c.persister == nil {
		return false
	}
	state, ok := c.persister.Load()
	if !ok {
		return false
	}

	c.mu.Lock()
	c.text = state.Text
	c.annotations = append([]model.Annotation(nil), state.Annotations...)
	c.clearSuggestionLocked()
	c.scheduleLocked()
	c.mu.Unlock()

	c.logger.Debug().Int("annotations", len(state.Annotations)).Msg("state restored")
	return true
}

// SetText replaces the document text. Any visible or pending suggestion is dropped.
func (c *Controller) SetText(text string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.text = text
	c.clearSuggestionLocked()
	c.saveLocked()
	c.scheduleLocked()
	return c.snapshotLocked()
}

// Accept commits the current ghost text. It returns false when there was nothing to accept.
func (c *Controller) Accept() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.suggestion == "" {
		return c.snapshotLocked(), false
	}

	result, ok := suggest.Merge(c.text, c.suggestion)
	c.clearSuggestionLocked()
	c.debouncer.Cancel()
	if !ok {
		return c.snapshotLocked(), false
	}

	c.text = result.Merged
	c.saveLocked()
	c.scheduleLocked()
	return c.snapshotLocked(), true
}

// Dismiss hides the current suggestion and cancels any pending request
func (c *Controller) Dismiss() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.debouncer.Cancel()
	c.clearSuggestionLocked()
	return c.snapshotLocked()
}

// Annotate attaches note to [start, end). An empty selection or empty note is
// a no-op and returns nil without error.
func (c *Controller) Annotate(start, end int, note string) (*model.Annotation, error) {
	if start == end || strings.TrimSpace(note) == "" {
		return nil, nil
	}
	if start > end {
		start, end = end, start
	}

	a, err := annotate.New(start, end, note)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := annotate.Add(c.text, c.annotations, a)
	if err != nil {
		return nil, err
	}
	c.annotations = updated
	c.saveLocked()
	return &a, nil
}

// RemoveAnnotation deletes the annotation with the given id
func (c *Controller) RemoveAnnotation(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := annotate.Remove(c.annotations, id)
	if err != nil {
		return err
	}
	c.annotations = updated
	c.saveLocked()
	return nil
}

// Snapshot returns the current state with annotations clamped to the text
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Export returns the text, with an appendix of notes when withNotes is set
func (c *Controller) Export(withNotes bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !withNotes {
		return c.text
	}
	return annotate.Export(c.text, c.annotations)
}

// Close cancels pending work and waits for in-flight requests to finish
func (c *Controller) Close() {
	c.debouncer.Close()
}

func (c *Controller) clearSuggestionLocked() {
	c.suggestion = ""
	c.ghost = ""
}

func (c *Controller) saveLocked() {
	if c.persister == nil {
		return
	}
	c.persister.Save(model.StoredState{
		Text:        c.text,
		Annotations: append([]model.Annotation(nil), c.annotations...),
	})
}

// scheduleLocked starts a new debounce cycle, superseding any earlier one
func (c *Controller) scheduleLocked() {
	if c.suggester == nil || strings.TrimSpace(c.text) == "" {
		c.debouncer.Cancel()
		return
	}

	text := c.text
	c.debouncer.Trigger(func(ctx context.Context, gen uint64) {
		c.fetch(ctx, gen, text)
	})
}

func (c *Controller) fetch(ctx context.Context, gen uint64, text string) {
	candidate, ok := c.suggester.Suggest(ctx, text)

	c.mu.Lock()
	if !c.debouncer.IsCurrent(gen) || c.text != text {
		latest := c.debouncer.Generation()
		c.mu.Unlock()
		c.logger.Debug().Uint64("generation", gen).Uint64("latest", latest).Msg("stale suggestion discarded")
		return
	}

	c.clearSuggestionLocked()
	if ok {
		if result, merged := suggest.Merge(text, candidate); merged {
			c.suggestion = candidate
			c.ghost = result.Ghost
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Text:        c.text,
		Ghost:       c.ghost,
		Suggestion:  c.suggestion,
		Annotations: annotate.Clamp(c.text, c.annotations),
		Segments:    annotate.Segments(c.text, c.annotations),
	}
}
