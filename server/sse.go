package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// sseWriter streams Server-Sent Events to the client. Headers are written
// lazily on the first event, so a request that fails before producing any
// output can still send a plain JSON error with a real status code.
type sseWriter struct {
	rw      http.ResponseWriter
	w       io.Writer
	flusher http.Flusher
	started bool
}

func newSSEWriter(rw http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := rw.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	return &sseWriter{rw: rw, w: rw, flusher: flusher}, nil
}

// Started reports whether any event has been written yet.
func (s *sseWriter) Started() bool {
	return s.started
}

// WriteEvent sends one named event with a JSON payload.
func (s *sseWriter) WriteEvent(event string, payload any) error {
	if !s.started {
		s.rw.Header().Set("Content-Type", "text/event-stream")
		s.rw.Header().Set("Cache-Control", "no-cache")
		s.rw.Header().Set("Connection", "keep-alive")
		s.rw.Header().Set("X-Accel-Buffering", "no")
		s.started = true
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write event name: %w", err)
	}

	// Each payload line needs its own data prefix.
	for _, line := range strings.Split(string(data), "\n") {
		if _, err := fmt.Fprintf(s.w, "data: %s\n", line); err != nil {
			return fmt.Errorf("write data line: %w", err)
		}
	}

	if _, err := io.WriteString(s.w, "\n"); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	s.flusher.Flush()
	return nil
}
