package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/prefixtree/internal/ctxlog"
	"github.com/vk/prefixtree/internal/session"
	"golang.org/x/sync/errgroup"
)

// ErrPartialDecode is returned by Run when KeepGoing is set and at least one
// prefix failed to decode. The output has still been written.
var ErrPartialDecode = errors.New("some prefixes could not be decoded")

// MaxLineSize is the longest input line decodeStream accepts.
const MaxLineSize = 1 << 20

// Failure records a prefix that could not be decoded.
type Failure struct {
	Line   int    `json:"line" yaml:"line"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Error  string `json:"error" yaml:"error"`
}

// StreamResult is the outcome of decoding one input stream.
type StreamResult struct {
	Source     string              `json:"source" yaml:"source"`
	Placements []session.Placement `json:"placements" yaml:"placements"`
	Failures   []Failure           `json:"failures,omitempty" yaml:"failures,omitempty"`
	Tree       session.Tree        `json:"tree" yaml:"tree"`
}

// Run decodes every configured input and writes the results. stdin is read
// when an input is StdinSource.
func (a *App) Run(ctx context.Context, stdin io.Reader) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "inputs", len(a.config.Inputs), "workers", a.config.Workers)

	results := make([]*StreamResult, len(a.config.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i, source := range a.config.Inputs {
		i, source := i, source
		g.Go(func() error {
			res, err := a.decodeSource(gctx, source, stdin)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.write(results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	failed := 0
	for _, res := range results {
		failed += len(res.Failures)
	}
	if failed > 0 {
		a.logger.Warn("Decoding finished with failures.", "failed", failed)
		return fmt.Errorf("%d failed: %w", failed, ErrPartialDecode)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// decodeSource opens source and decodes it in a fresh session.
func (a *App) decodeSource(ctx context.Context, source string, stdin io.Reader) (*StreamResult, error) {
	if source == StdinSource {
		if stdin == nil {
			return nil, errors.New("standard input requested but not available")
		}
		return a.decodeStream(ctx, "stdin", stdin)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return a.decodeStream(ctx, source, f)
}

// decodeStream decodes one prefix per line of r. Blank lines and lines
// starting with '#' are skipped.
func (a *App) decodeStream(ctx context.Context, source string, r io.Reader) (*StreamResult, error) {
	logger := ctxlog.FromContext(ctx).With("source", source)
	logger.Debug("Decoding stream.")

	sess, err := a.factory.NewSession(ctx)
	if err != nil {
		return nil, err
	}

	res := &StreamResult{Source: source, Placements: []session.Placement{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MaxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		placement, err := sess.Decode(ctx, raw)
		if err != nil {
			if !a.config.KeepGoing {
				return nil, fmt.Errorf("%s:%d: %w", source, line, err)
			}
			logger.Warn("Prefix could not be decoded.", "line", line, "prefix", raw, "error", err)
			res.Failures = append(res.Failures, Failure{Line: line, Prefix: raw, Error: err.Error()})
			continue
		}
		res.Placements = append(res.Placements, placement)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	res.Tree = sess.Snapshot(ctx)
	logger.Info("Stream decoded.", "placements", len(res.Placements), "failures", len(res.Failures), "fieldsplits", len(res.Tree.Fieldsplits))
	return res, nil
}
