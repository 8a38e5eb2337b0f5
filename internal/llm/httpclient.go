package llm

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/flow/internal/util"
)

const (
	// maxResponseBytes caps how much of a provider response is read
	maxResponseBytes = 1 << 20
	maxRedirects     = 3
)

// newHTTPClient builds the client shared by the JSON-over-HTTP providers
func newHTTPClient(config Config, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: util.NewTransport(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// readBody reads at most maxResponseBytes of the response
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
