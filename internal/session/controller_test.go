package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/flow/internal/annotate"
	"github.com/ppiankov/flow/internal/model"
)

// stubSuggester answers from a function and records each request
type stubSuggester struct {
	calls  atomic.Int32
	answer func(ctx context.Context, text string) (string, bool)
}

func (s *stubSuggester) Suggest(ctx context.Context, text string) (string, bool) {
	s.calls.Add(1)
	return s.answer(ctx, text)
}

func fixed(suggestion string) *stubSuggester {
	return &stubSuggester{answer: func(context.Context, string) (string, bool) {
		return suggestion, true
	}}
}

type memoryPersister struct {
	mu    sync.Mutex
	state *model.StoredState
	saves int
}

func (m *memoryPersister) Load() (*model.StoredState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, false
	}
	copied := *m.state
	return &copied, true
}

func (m *memoryPersister) Save(state model.StoredState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &state
	m.saves++
}

func (m *memoryPersister) last() model.StoredState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return model.StoredState{}
	}
	return *m.state
}

// waitFor polls until cond holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestController_SuggestionAfterDebounce(t *testing.T) {
	s := fixed("thers")
	c := New(s, nil, WithDebounce(10*time.Millisecond))
	defer c.Close()

	snap := c.SetText("bro")
	if snap.Ghost != "" {
		t.Errorf("ghost should be empty right after an edit, got %q", snap.Ghost)
	}

	waitFor(t, func() bool { return c.Snapshot().Ghost != "" })
	if got := c.Snapshot().Ghost; got != "thers" {
		t.Errorf("ghost = %q, want %q", got, "thers")
	}
}

func TestController_SetTextAfterClose(t *testing.T) {
	s := fixed("world")
	c := New(s, nil, WithDebounce(time.Millisecond))
	c.Close()

	c.SetText("Hello")
	time.Sleep(30 * time.Millisecond)

	if calls := s.calls.Load(); calls != 0 {
		t.Errorf("expected no request after Close, got %d", calls)
	}
	if got := c.Snapshot().Text; got != "Hello" {
		t.Errorf("text = %q, want Hello", got)
	}
}

func TestController_RapidEditsRequestOnce(t *testing.T) {
	s := fixed("world")
	c := New(s, nil, WithDebounce(50*time.Millisecond))
	defer c.Close()

	for _, text := range []string{"H", "He", "Hel", "Hell", "Hello"} {
		c.SetText(text)
	}

	waitFor(t, func() bool { return c.Snapshot().Ghost != "" })
	if calls := s.calls.Load(); calls != 1 {
		t.Errorf("expected 1 request, got %d", calls)
	}
	if got := c.Snapshot().Ghost; got != " world" {
		t.Errorf("ghost = %q, want %q", got, " world")
	}
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 4)
	s := &stubSuggester{answer: func(ctx context.Context, text string) (string, bool) {
		started <- text
		if text == "first" {
			<-release
			return "stale", true
		}
		return "fresh", true
	}}

	c := New(s, nil, WithDebounce(5*time.Millisecond))
	defer c.Close()

	c.SetText("first")
	if got := <-started; got != "first" {
		t.Fatalf("unexpected first request %q", got)
	}

	c.SetText("second")
	if got := <-started; got != "second" {
		t.Fatalf("unexpected second request %q", got)
	}
	waitFor(t, func() bool { return c.Snapshot().Suggestion == "fresh" })

	close(release)
	c.Close()

	if got := c.Snapshot().Suggestion; got != "fresh" {
		t.Errorf("suggestion = %q, stale response must not replace it", got)
	}
}

func TestController_BlankTextSkipsRequest(t *testing.T) {
	s := fixed("anything")
	c := New(s, nil, WithDebounce(5*time.Millisecond))

	c.SetText("   \n")
	time.Sleep(30 * time.Millisecond)
	c.Close()

	if calls := s.calls.Load(); calls != 0 {
		t.Errorf("blank text should not request a suggestion, got %d calls", calls)
	}
}

func TestController_NoSuggestion(t *testing.T) {
	s := &stubSuggester{answer: func(context.Context, string) (string, bool) {
		return "", false
	}}
	var changes atomic.Int32
	c := New(s, nil, WithDebounce(5*time.Millisecond), WithOnChange(func(Snapshot) {
		changes.Add(1)
	}))
	defer c.Close()

	c.SetText("Hello")
	waitFor(t, func() bool { return changes.Load() > 0 })
	if snap := c.Snapshot(); snap.Ghost != "" || snap.Suggestion != "" {
		t.Errorf("expected no ghost, got %+v", snap)
	}
}

func TestController_Accept(t *testing.T) {
	p := &memoryPersister{}
	c := New(fixed("how the story ends."), p, WithDebounce(5*time.Millisecond))
	defer c.Close()

	c.SetText("and")
	waitFor(t, func() bool { return c.Snapshot().Ghost != "" })

	snap, ok := c.Accept()
	if !ok {
		t.Fatal("Accept() should succeed with a visible suggestion")
	}
	if snap.Text != "and how the story ends." {
		t.Errorf("text = %q, want %q", snap.Text, "and how the story ends.")
	}
	if snap.Ghost != "" || snap.Suggestion != "" {
		t.Errorf("suggestion should be cleared after accept, got %+v", snap)
	}
	if got := p.last().Text; got != "and how the story ends." {
		t.Errorf("persisted text = %q, want %q", got, "and how the story ends.")
	}
}

func TestController_AcceptWithoutSuggestion(t *testing.T) {
	c := New(nil, nil)
	defer c.Close()

	c.SetText("Hello")
	snap, ok := c.Accept()
	if ok {
		t.Error("Accept() should report false without a suggestion")
	}
	if snap.Text != "Hello" {
		t.Errorf("text changed to %q", snap.Text)
	}
}

func TestController_Dismiss(t *testing.T) {
	c := New(fixed("there"), nil, WithDebounce(5*time.Millisecond))
	defer c.Close()

	c.SetText("Hi")
	waitFor(t, func() bool { return c.Snapshot().Ghost != "" })

	snap := c.Dismiss()
	if snap.Ghost != "" || snap.Suggestion != "" {
		t.Errorf("expected cleared suggestion, got %+v", snap)
	}
	if snap.Text != "Hi" {
		t.Errorf("dismiss must not change text, got %q", snap.Text)
	}
	if _, ok := c.Accept(); ok {
		t.Error("Accept() after Dismiss() should do nothing")
	}
}

func TestController_Annotate(t *testing.T) {
	p := &memoryPersister{}
	c := New(nil, p)
	defer c.Close()

	c.SetText("The quick brown fox")

	a, err := c.Annotate(4, 9, "speed")
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}
	if a == nil || a.ID == "" {
		t.Fatalf("expected an annotation with an id, got %v", a)
	}

	if a, err := c.Annotate(3, 3, "empty"); a != nil || err != nil {
		t.Errorf("empty selection should be a no-op, got %v, %v", a, err)
	}
	if a, err := c.Annotate(0, 3, "  "); a != nil || err != nil {
		t.Errorf("empty note should be a no-op, got %v, %v", a, err)
	}
	if _, err := c.Annotate(6, 12, "overlap"); !errors.Is(err, annotate.ErrOverlap) {
		t.Errorf("expected ErrOverlap, got %v", err)
	}

	reversed, err := c.Annotate(19, 16, "animal")
	if err != nil {
		t.Fatalf("Annotate() reversed selection error: %v", err)
	}
	if reversed.Start != 16 || reversed.End != 19 {
		t.Errorf("reversed selection = [%d,%d), want [16,19)", reversed.Start, reversed.End)
	}

	if got := len(p.last().Annotations); got != 2 {
		t.Errorf("persisted %d annotations, want 2", got)
	}

	snap := c.Snapshot()
	if len(snap.Segments) != 4 {
		t.Errorf("expected 4 segments, got %+v", snap.Segments)
	}

	if err := c.RemoveAnnotation(a.ID); err != nil {
		t.Fatalf("RemoveAnnotation() error: %v", err)
	}
	if err := c.RemoveAnnotation(a.ID); !errors.Is(err, annotate.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got := len(c.Snapshot().Annotations); got != 1 {
		t.Errorf("expected 1 annotation after removal, got %d", got)
	}
}

func TestController_ShrinkingTextHidesAnnotations(t *testing.T) {
	c := New(nil, nil)
	defer c.Close()

	c.SetText("hello world")
	if _, err := c.Annotate(6, 11, "planet"); err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	snap := c.SetText("hello")
	if len(snap.Annotations) != 0 {
		t.Errorf("annotation past the end should be hidden, got %v", snap.Annotations)
	}
	if got := c.Export(true); got != "hello" {
		t.Errorf("Export(true) = %q, want plain text", got)
	}

	snap = c.SetText("hello world")
	if len(snap.Annotations) != 1 {
		t.Errorf("annotation should reappear once it fits again, got %v", snap.Annotations)
	}
}

func TestController_Export(t *testing.T) {
	c := New(nil, nil)
	defer c.Close()

	c.SetText("The quick brown fox")
	if _, err := c.Annotate(4, 9, "speed"); err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	if got := c.Export(false); got != "The quick brown fox" {
		t.Errorf("Export(false) = %q", got)
	}
	want := "The quick brown fox\n\n---\nMeta:\n• “quick” → speed"
	if got := c.Export(true); got != want {
		t.Errorf("Export(true) = %q, want %q", got, want)
	}
}

func TestController_Restore(t *testing.T) {
	p := &memoryPersister{state: &model.StoredState{
		Text:        "Hello world",
		Annotations: []model.Annotation{{ID: "a", Start: 0, End: 5, Note: "greeting"}},
	}}
	c := New(nil, p)
	defer c.Close()

	if !c.Restore() {
		t.Fatal("Restore() should find stored state")
	}
	snap := c.Snapshot()
	if snap.Text != "Hello world" || len(snap.Annotations) != 1 {
		t.Errorf("unexpected snapshot after restore: %+v", snap)
	}
	if p.saves != 0 {
		t.Errorf("restore should not write back, got %d saves", p.saves)
	}

	empty := New(nil, &memoryPersister{})
	if empty.Restore() {
		t.Error("Restore() should report false with nothing stored")
	}
	if New(nil, nil).Restore() {
		t.Error("Restore() should report false without a persister")
	}
}

func TestController_SetTextPersists(t *testing.T) {
	p := &memoryPersister{}
	c := New(nil, p)
	defer c.Close()

	c.SetText("draft")
	if got := p.last().Text; got != "draft" {
		t.Errorf("persisted text = %q, want %q", got, "draft")
	}
}
