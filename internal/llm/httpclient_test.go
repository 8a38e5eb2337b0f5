package llm

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewHTTPClient_RedirectLimit(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer server.Close()

	client := newHTTPClient(Config{}, 5*time.Second)
	resp, err := client.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected redirect loop to be stopped")
	}
	if hits != maxRedirects {
		t.Errorf("server hit %d times, want %d", hits, maxRedirects)
	}
}

func TestReadBody_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBytes+100)))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		t.Fatalf("readBody: %v", err)
	}
	if len(body) != maxResponseBytes {
		t.Errorf("read %d bytes, want %d", len(body), maxResponseBytes)
	}
}
