package wordlist

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
)

// Sink receives accepted candidates in emission order
type Sink interface {
	Append(candidate string) error
}

type flusher interface {
	Flush() error
}

// LineSink writes one newline-terminated candidate per line
type LineSink struct {
	w     *bufio.Writer
	lines int
}

// NewLineSink wraps w in a buffered line writer
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: bufio.NewWriter(w)}
}

// Append writes candidate followed by a newline
func (s *LineSink) Append(candidate string) error {
	if _, err := s.w.WriteString(candidate); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	s.lines++
	return nil
}

// Flush pushes buffered lines to the underlying writer
func (s *LineSink) Flush() error {
	return s.w.Flush()
}

// Lines returns how many candidates have been appended
func (s *LineSink) Lines() int {
	return s.lines
}

// FileSink appends candidates to a file. Close must be called on every path.
type FileSink struct {
	*LineSink
	f    *os.File
	path string
}

// OpenFileSink opens path for appending, creating it if needed
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &SinkWriteError{Op: "open", Err: err}
	}
	return &FileSink{LineSink: NewLineSink(f), f: f, path: path}, nil
}

// Path returns the file the sink appends to
func (s *FileSink) Path() string {
	return s.path
}

// Close flushes buffered lines and closes the file
func (s *FileSink) Close() error {
	flushErr := s.LineSink.Flush()
	closeErr := s.f.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		return &SinkWriteError{Op: "close", Err: err}
	}
	return nil
}

// SyncSink serializes appends so concurrent runs can share one sink
type SyncSink struct {
	mu    sync.Mutex
	inner Sink
}

// NewSyncSink wraps inner with a mutex
func NewSyncSink(inner Sink) *SyncSink {
	return &SyncSink{inner: inner}
}

func (s *SyncSink) Append(candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Append(candidate)
}

// Flush flushes the wrapped sink if it buffers
func (s *SyncSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.inner.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// SliceSink keeps candidates in memory. With a positive Limit only the
// first Limit candidates are kept; Total still counts all of them.
type SliceSink struct {
	Limit      int
	Candidates []string
	Total      int
}

func (s *SliceSink) Append(candidate string) error {
	s.Total++
	if s.Limit > 0 && len(s.Candidates) >= s.Limit {
		return nil
	}
	s.Candidates = append(s.Candidates, candidate)
	return nil
}
