package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/flow/internal/model"
	"github.com/ppiankov/flow/internal/session"
)

type stubSuggester struct {
	suggestion string
	ok         bool
	onlyFor    string
	lastText   string
}

func (s *stubSuggester) Suggest(_ context.Context, text string) (string, bool) {
	s.lastText = text
	if s.onlyFor != "" && text != s.onlyFor {
		return "", false
	}
	return s.suggestion, s.ok
}

func testRouter(t *testing.T, s session.Suggester) (http.Handler, *session.Controller) {
	t.Helper()
	doc := session.New(s, nil, session.WithDebounce(5*time.Millisecond))
	t.Cleanup(doc.Close)
	return NewRouter(NewHandler(s, doc, zerolog.Nop()), zerolog.Nop()), doc
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthLive(t *testing.T) {
	h, _ := testRouter(t, nil)
	w := do(t, h, http.MethodGet, "/health/live", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSuggest(t *testing.T) {
	s := &stubSuggester{suggestion: "the story ends.", ok: true}
	h, _ := testRouter(t, s)

	w := do(t, h, http.MethodPost, "/api/suggest", SuggestRequest{ContextText: "and how"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SuggestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Suggestion == nil || *resp.Suggestion != "the story ends." {
		t.Errorf("suggestion = %v", resp.Suggestion)
	}
	if s.lastText != "and how" {
		t.Errorf("suggester received %q", s.lastText)
	}
}

func TestSuggest_NullCases(t *testing.T) {
	tests := []struct {
		name      string
		suggester session.Suggester
		body      any
	}{
		{"no suggestion", &stubSuggester{ok: false}, SuggestRequest{ContextText: "Hello"}},
		{"malformed body", &stubSuggester{suggestion: "x", ok: true}, "{not json"},
		{"no provider", nil, SuggestRequest{ContextText: "Hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(NewHandler(tt.suggester, nil, zerolog.Nop()), zerolog.Nop())
			w := do(t, h, http.MethodPost, "/api/suggest", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != `{"suggestion":null}` {
				t.Errorf("body = %s", got)
			}
		})
	}
}

func TestDocumentRoutesAbsentWithoutController(t *testing.T) {
	h := NewRouter(NewHandler(nil, nil, zerolog.Nop()), zerolog.Nop())
	w := do(t, h, http.MethodGet, "/api/document", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	h, _ := testRouter(t, &stubSuggester{suggestion: "thers", ok: true, onlyFor: "bro"})

	w := do(t, h, http.MethodPut, "/api/document", DocumentRequest{Text: "bro"})
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", w.Code, w.Body.String())
	}

	var snap session.Snapshot
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w = do(t, h, http.MethodGet, "/api/document", nil)
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Ghost != "" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Ghost != "thers" {
		t.Fatalf("ghost = %q, want %q", snap.Ghost, "thers")
	}

	w = do(t, h, http.MethodPost, "/api/document/accept", nil)
	var accepted AcceptResponse
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	if !accepted.Accepted || accepted.Text != "brothers" {
		t.Errorf("accept = %+v", accepted)
	}

	w = do(t, h, http.MethodPost, "/api/document/accept", nil)
	accepted = AcceptResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &accepted)
	if accepted.Accepted {
		t.Error("second accept should report false")
	}

	w = do(t, h, http.MethodPost, "/api/document/dismiss", nil)
	if w.Code != http.StatusOK {
		t.Errorf("dismiss status = %d", w.Code)
	}
}

func TestAnnotationRoutes(t *testing.T) {
	h, _ := testRouter(t, nil)
	do(t, h, http.MethodPut, "/api/document", DocumentRequest{Text: "The quick brown fox"})

	w := do(t, h, http.MethodPost, "/api/document/annotations", AnnotationRequest{Start: 4, End: 9, Note: "speed"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created model.Annotation
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Note != "speed" {
		t.Errorf("created = %+v", created)
	}

	cases := []struct {
		name string
		body any
		want int
	}{
		{"overlap", AnnotationRequest{Start: 6, End: 12, Note: "x"}, http.StatusConflict},
		{"past end", AnnotationRequest{Start: 16, End: 40, Note: "x"}, http.StatusBadRequest},
		{"negative", AnnotationRequest{Start: -1, End: 3, Note: "x"}, http.StatusBadRequest},
		{"empty selection", AnnotationRequest{Start: 2, End: 2, Note: "x"}, http.StatusNoContent},
		{"blank note", AnnotationRequest{Start: 0, End: 3, Note: " "}, http.StatusNoContent},
		{"note too long", AnnotationRequest{Start: 0, End: 3, Note: strings.Repeat("n", maxNoteLength+1)}, http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/document/annotations", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	w = do(t, h, http.MethodGet, "/api/document/export?comments=1", nil)
	want := "The quick brown fox\n\n---\nMeta:\n• “quick” → speed"
	if w.Body.String() != want {
		t.Errorf("export = %q, want %q", w.Body.String(), want)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}

	w = do(t, h, http.MethodGet, "/api/document/export", nil)
	if w.Body.String() != "The quick brown fox" {
		t.Errorf("plain export = %q", w.Body.String())
	}

	w = do(t, h, http.MethodDelete, "/api/document/annotations/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	w = do(t, h, http.MethodDelete, "/api/document/annotations/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestPutDocument_BadJSON(t *testing.T) {
	h, _ := testRouter(t, nil)
	w := do(t, h, http.MethodPut, "/api/document", "nope")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
