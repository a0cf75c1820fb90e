package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/declutter/pkg/config"
	"github.com/macropower/declutter/pkg/log"
	"github.com/macropower/declutter/pkg/scan"
)

// ErrResolvePath indicates a document path that could not be canonicalized.
var ErrResolvePath = errors.New("resolve path")

// Auditor audits configuration documents.
type Auditor struct {
	tracer   trace.Tracer
	baseDir  string
	scanOpts []scan.Option
	jobs     int
}

// Option configures an [Auditor].
type Option func(*Auditor)

// WithJobs sets how many entries are audited concurrently. Values below 1
// are treated as 1.
func WithJobs(n int) Option {
	return func(a *Auditor) {
		a.jobs = max(1, n)
	}
}

// WithScanOptions sets options for the [scan.Scanner] of every entry.
func WithScanOptions(opts ...scan.Option) Option {
	return func(a *Auditor) {
		a.scanOpts = opts
	}
}

// WithTracer sets the tracer used for audit spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Auditor) {
		a.tracer = t
	}
}

// WithBaseDir sets the directory relative document paths are resolved
// against. It defaults to the current working directory.
func WithBaseDir(dir string) Option {
	return func(a *Auditor) {
		a.baseDir = dir
	}
}

// New creates a new [Auditor].
func New(opts ...Option) *Auditor {
	a := &Auditor{
		tracer: otel.Tracer("auditor"),
		jobs:   1,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run audits every entry of doc. Each [Result] is passed to onResult (if
// not nil) in document order as soon as it and all earlier results are
// available. The returned [Summary] holds all results.
func (a *Auditor) Run(ctx context.Context, doc *config.Document, onResult func(*Result)) *Summary {
	ctx, span := a.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.Int("entries", len(doc.Entries)),
		attribute.Int("jobs", a.jobs),
	))
	defer span.End()

	start := time.Now()
	n := len(doc.Entries)
	results := make([]*Result, n)
	done := make([]chan struct{}, n)

	for i := range done {
		done[i] = make(chan struct{})
	}

	g := &errgroup.Group{}
	g.SetLimit(a.jobs)

	go func() {
		for i := range n {
			g.Go(func() error {
				results[i] = a.audit(ctx, doc, i)
				close(done[i])

				return nil
			})
		}
	}()

	summary := &Summary{}

	for i := range n {
		<-done[i]

		if onResult != nil {
			onResult(results[i])
		}

		summary.add(results[i])
	}

	_ = g.Wait() //nolint:errcheck // Entry errors are recorded in results.

	summary.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("violations", summary.Violations),
		attribute.Int("failed", summary.Failed),
	)

	return summary
}

// audit resolves, builds and scans one entry.
func (a *Auditor) audit(ctx context.Context, doc *config.Document, i int) *Result {
	entry := doc.Entries[i]

	ctx, span := a.tracer.Start(ctx, "audit", trace.WithAttributes(
		attribute.String("path", entry.Path),
	))
	defer span.End()

	logger := log.WithContext(ctx)
	start := time.Now()

	res := &Result{Path: entry.Path}
	fail := func(phase Phase, err error) *Result {
		res.Phase = phase
		res.Err = err
		res.Duration = time.Since(start)

		span.RecordError(err)
		span.SetStatus(codes.Error, string(phase))

		logger.DebugContext(ctx, "audit failed",
			slog.String("path", entry.Path),
			slog.String("phase", string(phase)),
			slog.Any("error", err),
		)

		return res
	}

	resolved, err := ResolvePath(a.baseDir, entry.Path)
	if err != nil {
		return fail(PhaseResolve, err)
	}

	res.Resolved = resolved
	span.SetAttributes(attribute.String("resolved", resolved))

	rs, err := doc.Build(i)
	if err != nil {
		return fail(PhaseBuild, err)
	}

	logger.DebugContext(ctx, "scan directory",
		slog.String("path", resolved),
		slog.String("rules", rs.String()),
	)

	c := &scan.Collector{}
	s := scan.NewScanner(append(a.scanOpts, scan.WithReporter(c))...)

	clean, err := s.Scan(ctx, resolved, rs)
	res.Violations = c.Violations

	if err != nil {
		return fail(PhaseScan, err)
	}

	res.Clean = clean
	res.Duration = time.Since(start)

	span.SetAttributes(attribute.Int("violations", len(res.Violations)))

	logger.DebugContext(ctx, "scanned directory",
		slog.String("path", resolved),
		slog.Int("violations", len(res.Violations)),
		slog.Duration("duration", res.Duration),
	)

	return res
}

// ResolvePath canonicalizes a document path: "~" is expanded, relative
// paths are joined to baseDir (or the working directory if empty), and
// symbolic links are resolved. The path must exist.
func ResolvePath(baseDir, path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrResolvePath, path, err)
	}

	if !filepath.IsAbs(expanded) {
		if baseDir == "" {
			baseDir, err = os.Getwd()
			if err != nil {
				return "", fmt.Errorf("%w: %s: %w", ErrResolvePath, path, err)
			}
		}

		expanded = filepath.Join(baseDir, expanded)
	}

	resolved, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrResolvePath, path, err)
	}

	return resolved, nil
}
