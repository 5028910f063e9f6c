package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent Events for one search. Safe for concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	prefix  string
	seq     int
	closed  bool
}

// NewSSEWriter sets the stream headers. Event IDs are prefix-1, prefix-2, ...
func NewSSEWriter(w http.ResponseWriter, prefix string) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher, prefix: prefix}, nil
}

// WriteEvent sends one event. Nothing is written after the terminal event.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("event %q after stream end", event)
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %s-%d\nevent: %s\ndata: %s\n\n", s.prefix, s.seq, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *SSEWriter) finish(event string, data any) {
	_ = s.WriteEvent(event, data)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// WriteError ends the stream with an error event
func (s *SSEWriter) WriteError(message string) {
	s.finish("error", ErrorResponse{Error: message})
}

// WriteComplete ends the stream with the final document
func (s *SSEWriter) WriteComplete(requestID, document string) {
	s.finish("complete", map[string]string{
		"request_id": requestID,
		"result":     document,
	})
}
