package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

// Target describes one entry of the inspector's /json/list endpoint.
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	Description          string `json:"description,omitempty"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Attachable reports whether a debugger can connect to the target.
func (t Target) Attachable() bool {
	if t.WebSocketDebuggerURL == "" {
		return false
	}

	switch t.Type {
	case "node", "page", "":
		return true
	default:
		return false
	}
}

// ListTargets fetches the targets advertised at endpoint, which is the
// inspector's HTTP base address (for example http://127.0.0.1:9229).
func ListTargets(ctx context.Context, client *http.Client, endpoint string) ([]Target, error) {
	if client == nil {
		client = http.DefaultClient
	}

	listURL := strings.TrimRight(endpoint, "/") + "/json/list"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, &errors.ConnectionError{URL: listURL, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &errors.ConnectionError{URL: listURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, &errors.ConnectionError{
			URL: listURL,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var targets []Target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, &errors.ConnectionError{URL: listURL, Err: fmt.Errorf("decode target list: %w", err)}
	}

	return targets, nil
}

// ResolveDebuggerURL returns the websocket URL of the first attachable target
// at endpoint. Returns errors.ErrNoTarget if none is advertised.
func ResolveDebuggerURL(ctx context.Context, client *http.Client, endpoint string) (string, error) {
	targets, err := ListTargets(ctx, client, endpoint)
	if err != nil {
		return "", err
	}

	for _, t := range targets {
		if t.Attachable() {
			return t.WebSocketDebuggerURL, nil
		}
	}

	return "", fmt.Errorf("%w at %s", errors.ErrNoTarget, endpoint)
}
