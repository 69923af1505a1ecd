package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// ComponentHandler processes a single component file found by the walker.
type ComponentHandler interface {
	Inline(file string) error
}

// Walker does a breadth-first traversal of the dist tree and hands every
// component file to a ComponentHandler.
type Walker struct {
	cfg     Config
	handler ComponentHandler
	ignore  gitignore.IgnoreMatcher
	summary *Summary
	logger  *slog.Logger

	// readDir is swapped out in tests.
	readDir func(string) ([]fs.DirEntry, error)
}

// NewWalker loads the ignore file, if one is configured.
func NewWalker(cfg Config, handler ComponentHandler, summary *Summary, logger *slog.Logger) (*Walker, error) {
	w := &Walker{
		cfg:     cfg,
		handler: handler,
		summary: summary,
		logger:  defaultLogger(logger).With("component", "walker"),
		readDir: os.ReadDir,
	}
	if w.summary == nil {
		w.summary = &Summary{}
	}

	if cfg.IgnoreFile != "" {
		matcher, err := gitignore.NewGitIgnore(cfg.IgnoreFile, cfg.DistDir)
		if err != nil {
			return nil, fmt.Errorf("could not parse ignore file %s: %w", cfg.IgnoreFile, err)
		}
		w.ignore = matcher
	}
	return w, nil
}

// Walk visits root and every directory below it once, in breadth-first order.
// All component files of a directory are handled concurrently, and the next
// directory is only read once they have all returned. The first handler or
// listing error stops the walk.
func (w *Walker) Walk(ctx context.Context, root string) error {
	queue := []string{root}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir := queue[0]
		queue = queue[1:]

		w.logger.Debug("scanning directory", "dir", dir)
		entries, err := w.readDir(dir)
		if err != nil {
			return fmt.Errorf("error reading directory %s: %w", dir, err)
		}
		w.summary.Dirs.Add(1)

		var g errgroup.Group
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.IsDir():
				if w.ignored(path, true) {
					w.logger.Debug("skipping ignored directory", "dir", path)
					continue
				}
				queue = append(queue, path)
			case entry.Type().IsRegular() && w.isComponent(entry.Name()):
				if w.ignored(path, false) {
					continue
				}
				g.Go(func() error {
					return w.handler.Inline(path)
				})
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// isComponent matches a base name against the configured pattern. The
// pattern was validated when the config was built.
func (w *Walker) isComponent(name string) bool {
	ok, _ := doublestar.Match(w.cfg.Pattern, name)
	return ok
}

func (w *Walker) ignored(path string, isDir bool) bool {
	return w.ignore != nil && w.ignore.Match(path, isDir)
}
