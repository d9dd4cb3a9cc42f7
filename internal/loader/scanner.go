package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// Scanner scans a directory for SQL model files.
type Scanner struct {
	loader *Loader

	// Concurrency bounds parallel file parsing; zero means GOMAXPROCS.
	Concurrency int
	// Logger receives per-file debug output
	Logger *slog.Logger
}

// NewScanner creates a new directory scanner.
func NewScanner(baseDir string) *Scanner {
	return &Scanner{
		loader: NewLoader(baseDir),
		Logger: slog.New(slog.DiscardHandler),
	}
}

// GetLoader returns the underlying loader.
func (s *Scanner) GetLoader() *Loader {
	return s.loader
}

// Project is the set of models found for one project.
type Project struct {
	// Models are the SQL models, sorted by path
	Models []*core.Model
	// External are the declared external models
	External []*core.Model
	// Catalog resolves model columns, external models included
	Catalog *Catalog
}

// All returns the SQL models followed by the external models.
func (p *Project) All() []*core.Model {
	return append(append([]*core.Model(nil), p.Models...), p.External...)
}

// Load scans dir, reads the external models file (if any) and records
// render problems on every SQL model.
func (s *Scanner) Load(ctx context.Context, dir, externalPath string) (*Project, error) {
	var external []*core.Model
	if externalPath != "" {
		var err error
		if external, err = LoadExternalModels(externalPath); err != nil {
			return nil, err
		}
	}

	models, err := s.ScanDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	catalog := NewCatalog(append(append([]*core.Model(nil), external...), models...)...)
	for _, m := range models {
		catalog.Render(m)
	}

	return &Project{Models: models, External: external, Catalog: catalog}, nil
}

// ScanDir recursively scans a directory for SQL files and parses them.
// Every failing file is reported; the result is sorted by model path.
func (s *Scanner) ScanDir(ctx context.Context, dir string) ([]*core.Model, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden files and directories
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories and non-SQL files
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	models := make([]*core.Model, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := s.loader.ParseFile(path)
			if err != nil {
				errs[i] = &LoadError{File: path, Err: err}
				return nil
			}
			s.Logger.Debug("loaded model", slog.String("path", m.Path), slog.String("file", path))
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Path < models[j].Path })
	return models, nil
}
