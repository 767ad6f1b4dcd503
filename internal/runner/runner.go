// Package runner drives an upgrade run: discover files, push each one
// through the rewrite pipeline, and emit unified diffs for whatever changed.
package runner

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/maypok86/otter"

	"github.com/concolato/flask-upgrade/internal/config"
	"github.com/concolato/flask-upgrade/internal/diffout"
	"github.com/concolato/flask-upgrade/internal/pyfront"
	"github.com/concolato/flask-upgrade/internal/rewrite"
	"github.com/concolato/flask-upgrade/internal/scan"
)

// Progress receives per-file notifications during a run. Implementations
// must only write to stderr; stdout is reserved for patch output.
type Progress interface {
	Start(totalFiles int)
	Step(path string)
	Finish()
}

// noProgress is the default reporter.
type noProgress struct{}

func (noProgress) Start(int) {}

func (noProgress) Step(string) {}

func (noProgress) Finish() {}

// Runner owns one upgrade run's moving parts. Files are processed
// independently, so a transformed result depends only on a file's content
// and its logical module identity; the cache exploits that to skip repeated
// pipeline work on identical content (duplicate files, watch-mode
// re-events).
type Runner struct {
	cfg      *config.Config
	scanner  *scan.Scanner
	pipeline *rewrite.Pipeline
	cache    otter.Cache[string, string]
	out      io.Writer
	progress Progress
}

// New builds a runner writing patches to out. A nil progress disables
// reporting.
func New(cfg *config.Config, frontend pyfront.Frontend, out io.Writer, progress Progress) (*Runner, error) {
	scanner, err := scan.NewScanner(cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}

	cache, err := otter.MustBuilder[string, string](cfg.Cache.MaxEntries).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}

	if progress == nil {
		progress = noProgress{}
	}

	return &Runner{
		cfg:     cfg,
		scanner: scanner,
		pipeline: rewrite.NewPipeline(frontend, rewrite.Options{
			TeardownDetection: cfg.Rewrite.TeardownDetection,
		}),
		cache:    cache,
		out:      out,
		progress: progress,
	}, nil
}

// Close releases the result cache.
func (r *Runner) Close() {
	r.cache.Close()
}

// Run scans the roots and emits one patch per modified file, in sorted path
// order. Unreadable files are logged and skipped; only a failure to write
// patch output is an error.
func (r *Runner) Run(roots []string) error {
	files := r.scanner.Scan(roots)

	r.progress.Start(len(files))
	defer r.progress.Finish()

	for _, f := range files {
		r.progress.Step(f.Path)
		if err := r.process(f); err != nil {
			return err
		}
	}
	return nil
}

// ProcessPath runs the pipeline for a single path, classifying it the same
// way a scan would. Watch mode calls this for changed files.
func (r *Runner) ProcessPath(path string) error {
	kind := scan.KindOther
	if strings.HasSuffix(path, ".py") {
		kind = scan.KindSource
	}
	return r.process(scan.File{Path: path, Kind: kind})
}

// Ignored reports whether a root-relative path is excluded by configuration.
func (r *Runner) Ignored(relPath string) bool {
	return r.scanner.Ignored(relPath)
}

func (r *Runner) process(f scan.File) error {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		log.Printf("warning: skipping %s: %v", f.Path, err)
		return nil
	}

	if f.Kind == scan.KindOther &&
		!scan.TemplateEligible(content, r.cfg.Templates.Markers, r.cfg.Templates.All) {
		return nil
	}

	original := string(content)
	transformed := r.transform(f, original)

	patch, err := diffout.Unified(f.Path, original, transformed)
	if err != nil {
		log.Printf("warning: diff failed for %s: %v", f.Path, err)
		return nil
	}
	if patch == "" {
		return nil
	}
	if _, err := io.WriteString(r.out, patch); err != nil {
		return fmt.Errorf("failed to write patch for %s: %w", f.Path, err)
	}
	return nil
}

// transform returns the pipeline output for the file, consulting the result
// cache first.
func (r *Runner) transform(f scan.File, original string) string {
	key := r.cacheKey(f, original)
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}

	var result rewrite.RewriteResult
	switch f.Kind {
	case scan.KindSource:
		result = r.pipeline.RewriteSource(f.Path, original)
	default:
		result = r.pipeline.RewriteTemplate(f.Path, original)
	}

	r.cache.Set(key, result.Transformed)
	return result.Transformed
}

// cacheKey captures everything the pipeline output depends on: the content,
// the file kind, and the module identity used for constructor auto-naming.
func (r *Runner) cacheKey(f scan.File, original string) string {
	sum := sha256.Sum256([]byte(original))
	return fmt.Sprintf("%d|%s|%x", f.Kind, rewrite.ModuleAutoName(f.Path), sum)
}
