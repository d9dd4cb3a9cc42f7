package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/leaplint/internal/cli/config"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// watchDebounce collapses bursts of file events into one re-lint.
const watchDebounce = 200 * time.Millisecond

// watchedExt lists the file types that trigger a re-lint.
var watchedExt = map[string]bool{
	".sql": true, ".star": true, ".yaml": true, ".yml": true,
}

// watchLint lints once, then again after every relevant change until ctx
// is cancelled. Lint failures are shown, never returned.
func watchLint(ctx context.Context, cc *CommandContext, opts *LintOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchRoots(cc.Cfg) {
		if err := watchDir(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	relint := func() {
		if _, err := lintOnce(ctx, cc, opts); err != nil && !errors.Is(err, lint.ErrLint) {
			cc.Renderer.Error(err.Error())
		}
		cc.Renderer.Println(cc.Renderer.Styles().Muted.Render("Watching for changes (Ctrl+C to stop)..."))
	}
	relint()

	return watchLoop(ctx, watcher, cc.Logger, relint)
}

// watchRoots returns the existing directories holding models, rules, the
// external models file and the config file.
func watchRoots(cfg *config.Config) []string {
	candidates := []string{
		cfg.ModelsDir,
		cfg.RulesDir,
		filepath.Dir(cfg.ExternalModels),
		cfg.ProjectRoot,
	}
	seen := map[string]bool{}
	var roots []string
	for _, dir := range candidates {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, dir)
		}
	}
	return roots
}

// watchDir recursively adds a directory to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		// Skip hidden directories
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchLoop calls relint once per burst of relevant events.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, logger *slog.Logger, relint func()) error {
	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchDir(watcher, event.Name)
					continue
				}
			}
			if !watchedExt[filepath.Ext(event.Name)] {
				continue
			}
			logger.Debug("change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			relint()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
