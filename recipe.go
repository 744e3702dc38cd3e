package propkey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
)

// Outcome is the per-source result of running a Recipe.
type Outcome int

const (
	// Unchanged means the source held no matching key.
	Unchanged Outcome = iota
	// Changed means at least one key was renamed; After, Diff and Patches
	// are set.
	Changed
	// Skipped means the recipe's file pattern excluded the source.
	Skipped
	// Failed means the source could not be parsed or rewritten; Err is set
	// and the source is left as it was.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Recipe renames one property key across a set of YAML sources.
type Recipe struct {
	OldKey string
	NewKey string
	// RelaxedBinding defaults to true when nil.
	RelaxedBinding *bool
	// FilePattern, when set, restricts the recipe to sources whose path
	// matches the doublestar glob (e.g. "**/application*.yml").
	FilePattern string
}

// Source is one YAML file's contents.
type Source struct {
	Path string
	Data []byte
}

// Result reports what a Recipe did to one Source.
type Result struct {
	Path    string
	Outcome Outcome
	Err     error

	// Set for Changed results only.
	After   []byte
	Diff    string            // unified diff of Data -> After
	Patches []json.RawMessage // RFC 7386 merge patch per YAML document
}

func (r Recipe) options() Options {
	relaxed := true
	if r.RelaxedBinding != nil {
		relaxed = *r.RelaxedBinding
	}
	return Options{Source: r.OldKey, Target: r.NewKey, Relaxed: relaxed}
}

// Validate checks the recipe's paths and file pattern without touching any
// source.
func (r Recipe) Validate() error {
	if _, err := newRewriter(r.options()); err != nil {
		return err
	}
	if r.FilePattern != "" && !doublestar.ValidatePattern(r.FilePattern) {
		return fmt.Errorf("%w: file pattern %q", ErrInvalidPattern, r.FilePattern)
	}
	return nil
}

// Applies reports whether the recipe's file pattern selects path.
func (r Recipe) Applies(path string) bool {
	if r.FilePattern == "" {
		return true
	}
	ok, err := doublestar.Match(r.FilePattern, filepath.ToSlash(path))
	return err == nil && ok
}

type runConfig struct {
	log         *slog.Logger
	concurrency int
}

// RunOption tunes Recipe.Run.
type RunOption func(*runConfig)

// WithLogger sets the logger used for per-source progress.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) { c.log = l }
}

// WithConcurrency bounds how many sources are rewritten at once.
func WithConcurrency(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// Run applies the recipe to every source. Sources are independent: one that
// fails to parse or rewrite is reported as Failed and does not affect the
// others. The returned slice has one Result per source, in input order. The
// error is non-nil only for an invalid recipe or a cancelled context.
func (r Recipe) Run(ctx context.Context, sources []Source, opts ...RunOption) ([]Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	cfg := runConfig{log: slog.New(slog.DiscardHandler), concurrency: runtime.GOMAXPROCS(0)}
	for _, o := range opts {
		o(&cfg)
	}

	results := make([]Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(src, cfg.log.With("path", src.Path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r Recipe) runOne(src Source, log *slog.Logger) Result {
	res := Result{Path: src.Path}
	if !r.Applies(src.Path) {
		res.Outcome = Skipped
		log.Debug("skipped by file pattern", "pattern", r.FilePattern)
		return res
	}

	fail := func(err error) Result {
		res.Outcome = Failed
		res.Err = err
		log.Warn("rewrite failed", "error", err)
		return res
	}

	doc, err := Parse(src.Data)
	if err != nil {
		return fail(err)
	}
	before, err := doc.JSON()
	if err != nil {
		return fail(err)
	}
	changed, err := RewriteDocument(doc, r.options())
	if err != nil {
		return fail(err)
	}
	if !changed {
		log.Debug("no matching key")
		return res
	}
	after, err := doc.Marshal()
	if err != nil {
		return fail(err)
	}
	if string(after) == string(src.Data) {
		return res
	}
	afterJSON, err := doc.JSON()
	if err != nil {
		return fail(err)
	}
	patches := make([]json.RawMessage, len(afterJSON))
	for i := range afterJSON {
		p, err := jsonpatch.CreateMergePatch(before[i], afterJSON[i])
		if err != nil {
			return fail(fmt.Errorf("merge patch for document %d: %w", i, err))
		}
		patches[i] = p
	}

	res.Outcome = Changed
	res.After = after
	res.Patches = patches
	res.Diff = unifiedDiff(src.Path, string(src.Data), string(after))
	log.Info("rewrote key", "from", r.OldKey, "to", r.NewKey)
	return res
}

func unifiedDiff(path, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
