package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"hackmaster/internal/codec"
	"hackmaster/internal/domain"
	"hackmaster/internal/repository"
	"hackmaster/internal/wordlist"
)

var (
	// ErrInvalidFilename is returned for names that would escape the wordlist directory
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrRunNotFound is returned when no run has the requested ID
	ErrRunNotFound = errors.New("run not found")
	// ErrUnknownFormat is returned for unsupported export formats
	ErrUnknownFormat = errors.New("unknown format")
)

const maxLineBytes = 1 << 20

// WordlistOptions configures a WordlistService
type WordlistOptions struct {
	Dir         string
	SampleLines int
}

// WordlistService provides business logic for wordlist generation
type WordlistService struct {
	repo        repository.Runs
	gen         *wordlist.Generator
	eventBus    *EventBus
	dir         string
	sampleLines int
	logger      *zap.Logger

	fileLocks sync.Map // filename -> *sync.Mutex
}

// NewWordlistService creates the service and ensures the wordlist directory exists
func NewWordlistService(repo repository.Runs, gen *wordlist.Generator, eventBus *EventBus, opts WordlistOptions, logger *zap.Logger) (*WordlistService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create wordlist dir: %w", err)
	}

	return &WordlistService{
		repo:        repo,
		gen:         gen,
		eventBus:    eventBus,
		dir:         opts.Dir,
		sampleLines: opts.SampleLines,
		logger:      logger,
	}, nil
}

// Dir returns the directory wordlists are written to
func (s *WordlistService) Dir() string {
	return s.dir
}

// GenerateRequest asks for facts to be expanded into a named wordlist
type GenerateRequest struct {
	Filename string       `json:"output_filename"`
	Facts    domain.Facts `json:"facts"`
}

// Generate appends the wordlist for req to its file and records the run.
// LineCount and Sample describe the whole file, which may already hold
// lines from earlier runs with the same name.
func (s *WordlistService) Generate(ctx context.Context, req GenerateRequest) (*domain.Run, error) {
	filename, err := SanitizeFilename(req.Filename)
	if err != nil {
		return nil, err
	}

	// Reject malformed input before the file is created
	if _, err := s.gen.Derive(req.Facts); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, filename)
	run := domain.NewRun(filename, path, req.Facts)

	// The lock covers recording too, so DeleteRun never sees a written
	// file without its run
	unlock := s.lockFile(filename)
	defer unlock()

	stats, err := s.writeWordlist(path, req.Facts)
	if err == nil {
		run.LineCount, run.Sample, err = readBack(path, s.sampleLines)
	}
	if err != nil {
		s.logger.Error("wordlist generation failed",
			zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	run.Emitted = stats.Emitted
	run.Accepted = stats.Accepted
	run.Rejected = stats.Rejected

	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	s.logger.Info("wordlist generated",
		zap.String("run_id", run.ID),
		zap.String("filename", filename),
		zap.Int("emitted", stats.Emitted),
		zap.Int("accepted", stats.Accepted),
		zap.Int("lines", run.LineCount))

	s.eventBus.Publish(Event{
		Type: EventWordlistGenerated,
		Payload: map[string]interface{}{
			"run_id":   run.ID,
			"filename": filename,
			"accepted": stats.Accepted,
			"count":    run.LineCount,
		},
	})

	return run, nil
}

// writeWordlist owns the sink for the duration of one run
func (s *WordlistService) writeWordlist(path string, facts domain.Facts) (stats wordlist.Stats, err error) {
	sink, err := wordlist.OpenFileSink(path)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return s.gen.Generate(facts, sink)
}

func (s *WordlistService) lockFile(filename string) func() {
	v, _ := s.fileLocks.LoadOrStore(filename, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Preview is an in-memory run that never touches disk
type Preview struct {
	Candidates []string       `json:"candidates"`
	Stats      wordlist.Stats `json:"stats"`
}

// Preview returns the first limit accepted candidates; limit <= 0 keeps all
func (s *WordlistService) Preview(facts domain.Facts, limit int) (*Preview, error) {
	sink := &wordlist.SliceSink{Limit: limit}
	stats, err := s.gen.Generate(facts, sink)
	if err != nil {
		return nil, err
	}

	candidates := sink.Candidates
	if candidates == nil {
		candidates = []string{}
	}
	return &Preview{Candidates: candidates, Stats: stats}, nil
}

// ListRuns returns recorded runs, newest first
func (s *WordlistService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx, limit)
}

// GetRun retrieves a single run by ID
func (s *WordlistService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return run, nil
}

// OpenWordlist opens the file a run wrote to. The caller closes it.
func (s *WordlistService) OpenWordlist(ctx context.Context, id string) (*os.File, *domain.Run, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(run.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("wordlist file for run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open wordlist: %w", err)
	}
	return f, run, nil
}

// DeleteRun removes a run record. The wordlist file is removed with the
// last run that wrote to it.
func (s *WordlistService) DeleteRun(ctx context.Context, id string) error {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.lockFile(run.Filename)
	defer unlock()

	sharing, err := s.repo.CountRunsByFilename(ctx, run.Filename)
	if err != nil {
		return err
	}
	if sharing <= 1 {
		if err := os.Remove(run.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove wordlist: %w", err)
		}
	}

	if err := s.repo.DeleteRun(ctx, id); err != nil {
		return err
	}

	s.logger.Info("wordlist deleted", zap.String("run_id", id), zap.String("filename", run.Filename))

	s.eventBus.Publish(Event{
		Type:    EventWordlistDeleted,
		Payload: map[string]string{"run_id": id, "filename": run.Filename},
	})

	return nil
}

// ExportFacts writes the facts a run was generated from
func (s *WordlistService) ExportFacts(ctx context.Context, id, format string, w io.Writer) error {
	exporter := codec.ForFormat(format)
	if exporter == nil {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}

	return exporter.Export(run.Facts, w)
}

// SanitizeFilename appends .txt when missing and rejects names that are
// empty, hidden or contain path separators
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: name is empty", ErrInvalidFilename)
	case strings.ContainsAny(name, "/\\\x00"):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, name)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("%w: %q starts with a dot", ErrInvalidFilename, name)
	}

	if !strings.HasSuffix(name, ".txt") {
		name += ".txt"
	}
	return name, nil
}

// readBack counts the lines of path and returns the first n of them
func readBack(path string, n int) (int, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("read back wordlist: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		count  int
		sample []string
	)
	for scanner.Scan() {
		if count < n {
			sample = append(sample, scanner.Text())
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, fmt.Errorf("read back wordlist: %w", err)
	}

	return count, sample, nil
}
