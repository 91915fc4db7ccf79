package gitlab

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// captureTransport keeps a copy of the last response body so it can be
// shown in verbose mode after the client has decoded it.
type captureTransport struct {
	next http.RoundTripper

	mu   sync.Mutex
	body []byte
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.Body == nil {
		return resp, err
	}

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	t.mu.Lock()
	t.body = data
	t.mu.Unlock()

	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func (t *captureTransport) last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.body)
}
