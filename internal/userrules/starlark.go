package userrules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"go.starlark.net/starlark"

	lstarlark "github.com/leapstack-labs/leaplint/internal/starlark"
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// Loader scans a directory for .star files defining rules.
type Loader struct {
	dir    string
	pool   *lstarlark.ThreadPool
	logger *slog.Logger
}

// NewLoader creates a new rule loader for the specified directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		dir:    dir,
		pool:   lstarlark.NewThreadPool(0, logger),
		logger: logger,
	}
}

// Load executes every .star file in the directory, in name order, and
// returns the rules they define. A missing directory defines none.
func (l *Loader) Load() ([]lint.Rule, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules directory: %w", err)
	}
	sort.Strings(files)

	var rules []lint.Rule
	for _, file := range files {
		defined, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded rule file", slog.String("file", file), slog.Int("rules", len(defined)))
		rules = append(rules, defined...)
	}
	return rules, nil
}

// loadFile executes one file with the rule() builtin predeclared.
func (l *Loader) loadFile(path string) ([]lint.Rule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob within the rules directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	var rules []lint.Rule
	register := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var (
			name    string
			summary string
			check   starlark.Callable
		)
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "check", &check, "summary?", &summary); err != nil {
			return nil, err
		}
		if n := lint.Canonicalize(name); n == "" || n == lint.AllSentinel {
			return nil, fmt.Errorf("rule: invalid name %q", name)
		}
		rules = append(rules, &starRule{
			name:    name,
			summary: summary,
			source:  path,
			check:   check,
			pool:    l.pool,
		})
		return starlark.None, nil
	}

	predeclared := starlark.StringDict{
		"rule": starlark.NewBuiltin("rule", register),
	}

	thread := l.pool.Get("load:" + filepath.Base(path))
	defer l.pool.Put(thread)

	globals, err := starlark.ExecFile(thread, path, content, predeclared) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	// Checks may run on many threads at once.
	globals.Freeze()
	for _, r := range rules {
		r.(*starRule).check.Freeze()
	}

	return rules, nil
}

// starRule is a rule whose check is a Starlark function.
type starRule struct {
	name    string
	summary string
	source  string
	check   starlark.Callable
	pool    *lstarlark.ThreadPool
}

func (r *starRule) Name() string    { return r.name }
func (r *starRule) Summary() string { return r.summary }
func (r *starRule) Source() string  { return r.source }

// Check calls the Starlark function. Script errors become violations.
func (r *starRule) Check(m *core.Model) *lint.Violation {
	model, err := lstarlark.ModelToStarlark(m)
	if err != nil {
		return lint.Violate(fmt.Sprintf("rule could not inspect model: %v", err))
	}

	thread := r.pool.Get("check:" + r.name)
	defer r.pool.Put(thread)

	result, err := starlark.Call(thread, r.check, starlark.Tuple{model}, nil)
	if err != nil {
		return lint.Violate(fmt.Sprintf("rule check failed: %v", err))
	}
	return toViolation(result)
}

// toViolation interprets a check result.
func toViolation(v starlark.Value) *lint.Violation {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		if !val {
			return nil
		}
		return &lint.Violation{}
	case starlark.String:
		if val == "" {
			return nil
		}
		return lint.Violate(string(val))
	default:
		return lint.Violate(fmt.Sprintf("rule check returned %s, want None, bool or string", v.Type()))
	}
}

// LoadError represents an error loading a rule file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}
