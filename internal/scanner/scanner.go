// Package scanner discovers block folders beneath a root directory.
//
// The scanner walks for block.json manifests up to a configurable depth,
// validates each candidate folder, loads the validated ones into
// BlockDefinitions, and applies include/exclude name filters. Per-block
// failures are converted into diagnostics at the scanner boundary so one
// broken block never prevents the rest of a project's blocks from
// registering; only a root-level failure aborts a scan. Candidates are
// processed with bounded concurrency and results are assembled by block
// identity, so completion order never affects output.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/logging"
	"github.com/slabs-dev/slabs/internal/manifest"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/types"
	"github.com/slabs-dev/slabs/internal/validate"
)

// maxWorkers caps candidate fan-out; block folders are small and disk-bound,
// so more workers stop paying off quickly.
const maxWorkers = 8

// Diagnostic aggregates the findings for one candidate block folder.
// Validation errors and loader failures share this one reporting channel.
type Diagnostic struct {
	// Path is the absolute candidate folder path
	Path string
	// Errors are the blocking findings that excluded the block, if any
	Errors []types.ValidationError
	// Warnings are advisory findings; present even for included blocks
	Warnings []types.ValidationWarning
}

// Scanner discovers and loads block definitions. Scan results are published
// wholesale into the bound registry; per-scan state never leaks between
// invocations.
type Scanner struct {
	registry  *registry.BlockRegistry
	validator *validate.Validator
	logger    logging.Logger

	mu    sync.Mutex
	diags []Diagnostic
}

// New creates a Scanner bound to a registry. The registry may be nil for
// one-shot scans that do not publish.
func New(reg *registry.BlockRegistry, logger logging.Logger) (*Scanner, error) {
	validator, err := validate.New()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Scanner{
		registry:  reg,
		validator: validator,
		logger:    logger.WithComponent("scanner"),
	}, nil
}

// scanOutcome is the per-candidate result collected from workers.
type scanOutcome struct {
	path string
	def  *types.BlockDefinition
	diag Diagnostic
}

// Scan discovers all valid blocks under dir.
//
// Candidate folders are those containing a block.json within opts.MaxDepth
// of dir (depth 1 = immediate children, 0 = unbounded), skipping opts.Ignore
// subtrees. Each candidate is validated, then loaded; failures of either
// step become diagnostics and exclude that block only. Include/exclude name
// globs are applied to each valid block's folder base name. The returned
// list is sorted by block name, and the same set is published into the bound
// registry, superseding the previous scan's publication.
func (s *Scanner) Scan(ctx context.Context, dir string, opts types.ScanOptions) ([]*types.BlockDefinition, error) {
	include, err := CompileGlobs(opts.Include)
	if err != nil {
		return nil, errors.NewConfigError("invalid include pattern: " + err.Error())
	}
	exclude, err := CompileGlobs(opts.Exclude)
	if err != nil {
		return nil, errors.NewConfigError("invalid exclude pattern: " + err.Error())
	}

	candidates, err := Candidates(dir, opts)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		root = dir
	}

	outcomes := s.processCandidates(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var diags []Diagnostic
	var defs []*types.BlockDefinition

	for _, outcome := range outcomes {
		if len(outcome.diag.Errors) > 0 || len(outcome.diag.Warnings) > 0 {
			diags = append(diags, outcome.diag)
		}
		for _, e := range outcome.diag.Errors {
			s.logger.Warn(ctx, nil, "block excluded",
				"path", outcome.path, "code", string(e.Code), "reason", e.Message)
		}
		for _, w := range outcome.diag.Warnings {
			s.logger.Info(ctx, "block warning",
				"path", outcome.path, "code", string(w.Code), "suggestion", w.Suggestion)
		}
		if outcome.def != nil {
			defs = append(defs, outcome.def)
		}
	}

	filtered := make([]*types.BlockDefinition, 0, len(defs))
	for _, def := range defs {
		base := filepath.Base(def.Path)
		if exclude.MatchAny(base) {
			s.logger.Debug(ctx, "block dropped by exclude filter", "path", def.Path)
			continue
		}
		if len(include) > 0 && !include.MatchAny(base) {
			s.logger.Debug(ctx, "block dropped by include filter", "path", def.Path)
			continue
		}
		filtered = append(filtered, def)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })

	s.mu.Lock()
	s.diags = diags
	s.mu.Unlock()

	if s.registry != nil {
		s.registry.Replace(filtered)
	}

	s.logger.Info(ctx, "scan complete",
		"root", root, "candidates", len(candidates), "blocks", len(filtered))

	return filtered, nil
}

// processCandidates fans candidates out across a bounded worker set and
// returns outcomes sorted by candidate path.
func (s *Scanner) processCandidates(ctx context.Context, candidates []string) []scanOutcome {
	if len(candidates) == 0 {
		return nil
	}

	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan string)
	results := make(chan scanOutcome, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- s.processCandidate(path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range candidates {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	outcomes := make([]scanOutcome, 0, len(candidates))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].path < outcomes[j].path })

	return outcomes
}

// processCandidate validates then loads one candidate folder. Within a
// single block the two steps are sequential: loader correctness depends on
// validation having confirmed structural soundness first. A loader failure
// after a passing validation (e.g. a file deleted in between) is recorded as
// a LOAD_FAILED diagnostic, never retried.
func (s *Scanner) processCandidate(path string) scanOutcome {
	outcome := scanOutcome{path: path}

	result := s.validator.Validate(path)
	outcome.diag = Diagnostic{
		Path:     path,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
	if !result.Valid {
		return outcome
	}

	def, err := manifest.Load(path)
	if err != nil {
		outcome.diag.Errors = append(outcome.diag.Errors, types.ValidationError{
			Code:    types.CodeLoadFailed,
			Message: err.Error(),
			Path:    path,
		})

		return outcome
	}

	outcome.def = def

	return outcome
}

// Diagnostics returns the per-folder findings of the most recent scan.
func (s *Scanner) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)

	return out
}

// ValidateBlock validates a single block folder without loading it.
func (s *Scanner) ValidateBlock(path string) types.ValidationResult {
	return s.validator.Validate(path)
}

// BlockMetadata loads and parses a single block's manifest.
func (s *Scanner) BlockMetadata(path string) (*types.BlockMetadata, error) {
	return manifest.LoadManifest(path)
}

// Candidates lists the absolute paths of the block folder candidates a scan
// of dir with the given options would visit: directories containing a
// block.json within opts.MaxDepth of dir, skipping opts.Ignore subtrees.
// Shared by Scan and by commands that enumerate block folders without
// loading them, so discovery can never diverge between them.
func Candidates(dir string, opts types.ScanOptions) ([]string, error) {
	if opts.Ignore == nil {
		opts.Ignore = types.DefaultScanOptions().Ignore
	}
	ignore, err := CompileGlobs(opts.Ignore)
	if err != nil {
		return nil, errors.NewConfigError("invalid ignore pattern: " + err.Error())
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewScanRootError(dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewScanRootError(root, err)
	}
	if !info.IsDir() {
		return nil, errors.NewScanRootError(root, nil)
	}

	candidates, err := collectCandidates(root, opts.MaxDepth, ignore, opts.FollowSymlinks)
	if err != nil {
		return nil, errors.NewScanRootError(root, err)
	}

	return candidates, nil
}

// collectCandidates walks root for directories containing a block.json.
// The scan root's own manifest is never a candidate; depth 1 means the
// root's immediate children. When symlinks are followed, directories are
// tracked by resolved path so a cycle cannot recurse forever.
func collectCandidates(root string, maxDepth int, ignore GlobSet, followSymlinks bool) ([]string, error) {
	var candidates []string

	visited := make(map[string]bool)
	if followSymlinks {
		if real, err := filepath.EvalSymlinks(root); err == nil {
			visited[real] = true
		}
	}

	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if depth == 0 {
				return err
			}
			// Unreadable subtree: skip it, the rest of the scan proceeds.
			return nil
		}

		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())

			isDir := entry.IsDir()
			if !isDir && entry.Type()&os.ModeSymlink != 0 && followSymlinks {
				if info, err := os.Stat(child); err == nil && info.IsDir() {
					isDir = true
				}
			}
			if !isDir {
				continue
			}
			if ignore.MatchAny(entry.Name()) {
				continue
			}
			if followSymlinks {
				// Each real directory is descended once, whichever path
				// reaches it first.
				real, err := filepath.EvalSymlinks(child)
				if err != nil {
					continue
				}
				if visited[real] {
					continue
				}
				visited[real] = true
			}

			childDepth := depth + 1
			if maxDepth > 0 && childDepth > maxDepth {
				continue
			}
			if manifest.HasManifest(child) {
				candidates = append(candidates, child)
			}
			if err := walk(child, childDepth); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}

	return candidates, nil
}
