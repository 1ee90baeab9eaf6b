package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hackmaster/internal/codec"
	"hackmaster/internal/domain"
	"hackmaster/internal/watcher"
	"hackmaster/internal/wordlist"
)

var (
	generateFacts  []string
	generateOut    string
	generateAppend bool
	generateWatch  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a wordlist from one or more facts files",
	Long: `Expands facts files (JSON or YAML, bare facts or the dashboard's
{output_filename, info_data} envelope) into a candidate wordlist.

Several --facts files are expanded concurrently, and their candidates are
written to the output in the order the files were given.
With --watch the wordlist is rebuilt whenever a facts file changes.`,
	Example: `  hackmaster generate --facts target.yaml --out target.txt
  hackmaster generate --facts a.json --facts b.yaml --out both.txt --watch`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVarP(&generateFacts, "facts", "f", nil, "Facts file (repeatable)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output wordlist path")
	generateCmd.Flags().BoolVar(&generateAppend, "append", false, "Append to the output instead of replacing it")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when a facts file changes")
	generateCmd.MarkFlagRequired("facts")
	generateCmd.MarkFlagRequired("out")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gen := wordlist.New(cfg.GeneratorOptions())

	stats, err := generateWordlist(gen, generateFacts, generateOut, generateAppend)
	if err != nil {
		return err
	}
	reportStats(cmd, stats)

	if !generateWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(generateFacts, func(path string) {
		stats, err := generateWordlist(gen, generateFacts, generateOut, generateAppend)
		if err != nil {
			logger.Error("regeneration failed", zap.String("trigger", path), zap.Error(err))
			return
		}
		reportStats(cmd, stats)
	}, logger)

	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func reportStats(cmd *cobra.Command, stats wordlist.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d candidates to %s (%d emitted, %d too short)\n",
		stats.Accepted, generateOut, stats.Emitted, stats.Rejected)
}

// generateWordlist expands every facts file into out, in argument order.
// All files are parsed and expanded before out is touched.
func generateWordlist(gen *wordlist.Generator, factsPaths []string, out string, appendOut bool) (stats wordlist.Stats, err error) {
	all := make([]domain.Facts, 0, len(factsPaths))
	for _, path := range factsPaths {
		facts, err := readFacts(path)
		if err != nil {
			return stats, err
		}
		if _, err := gen.Derive(facts); err != nil {
			return stats, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, facts)
	}

	// Each file expands into its own buffer so the output does not depend
	// on goroutine scheduling
	buffers := make([]*wordlist.SliceSink, len(all))
	perFile := make([]wordlist.Stats, len(all))
	var g errgroup.Group
	for i, facts := range all {
		buffers[i] = &wordlist.SliceSink{}
		g.Go(func() error {
			s, err := gen.Generate(facts, buffers[i])
			if err != nil {
				return fmt.Errorf("%s: %w", factsPaths[i], err)
			}
			perFile[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	if !appendOut {
		if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
			return stats, fmt.Errorf("replace %s: %w", out, err)
		}
	}

	sink, err := wordlist.OpenFileSink(out)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for i, buf := range buffers {
		for _, candidate := range buf.Candidates {
			if err := sink.Append(candidate); err != nil {
				return stats, &wordlist.SinkWriteError{Op: "append", Err: err}
			}
		}
		stats.Emitted += perFile[i].Emitted
		stats.Accepted += perFile[i].Accepted
		stats.Rejected += perFile[i].Rejected
	}

	logger.Debug("wordlist written",
		zap.String("out", out),
		zap.Int("facts_files", len(all)),
		zap.Int("accepted", stats.Accepted))

	return stats, nil
}

func readFacts(path string) (domain.Facts, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Facts{}, fmt.Errorf("open facts: %w", err)
	}
	defer f.Close()

	doc, err := codec.ForPath(path).Parse(f)
	if err != nil {
		return domain.Facts{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Facts, nil
}
