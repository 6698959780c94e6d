// Package trace provides an append-only journal of search runs, one JSON
// document per line. The journal is write-only from the engine's point of
// view: nothing in the search path ever reads it back, it exists for offline
// analysis of proposal behaviour and population dynamics.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds written by the search controller.
const (
	EventRunStart = "run_start"
	EventRound    = "round"
	EventRunEnd   = "run_end"
)

// Event is one journal record. Fields not relevant to a kind are omitted.
type Event struct {
	Time  string `json:"time"`
	Run   string `json:"run"`
	Kind  string `json:"kind"`
	Round int    `json:"round,omitempty"`

	// run_start
	Particles     int `json:"particles,omitempty"`
	MaximumLength int `json:"maximum_length,omitempty"`

	// round
	Proposals    int     `json:"proposals,omitempty"`
	Distinct     int     `json:"distinct,omitempty"`
	Mass         int     `json:"mass,omitempty"`
	BestDistance float64 `json:"best_distance,omitempty"`

	// run_end
	Results int `json:"results,omitempty"`
}

// Writer manages writing to the append-only trace file.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	path string
}

// NewWriter opens or creates a trace file at the given path.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &Writer{
		file: file,
		buf:  bufio.NewWriter(file), // 4kb buf (default)
		path: path,
	}, nil
}

// Write appends one event as a JSON line. The timestamp is filled in if the
// caller left it empty.
func (w *Writer) Write(ev Event) error {
	if ev.Time == "" {
		ev.Time = time.Now().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.buf.Write(data); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}

// Flush forces the buffer contents to be written to the os file descriptor.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

// Sync forces a flush to disk (fsync).
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// Path returns the file path.
func (w *Writer) Path() string {
	return w.path
}
