package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/rhinophore/pkg/config"
	"github.com/fsnotify/fsnotify"
)

// WatchDelay coalesces the bursts of events editors produce for one save.
var WatchDelay = 100 * time.Millisecond

// Watch regenerates path once, then again whenever it changes, and
// broadcasts each result. Scene files (.toml, .yaml, .json) go through
// GenerateScene; anything else is read as a recipe. Watch blocks until
// ctx is cancelled.
func (s *Server) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	gen := s.session()
	s.log.Info("watching", "path", abs)
	s.reload(gen, abs)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(WatchDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watch", "path", abs, "err", err)
		case <-pending:
			pending = nil
			s.reload(gen, abs)
		}
	}
}

// reload generates path and broadcasts the frame or the error.
func (s *Server) reload(gen Generator, path string) {
	start := time.Now()
	frame, err := generateFile(gen, path)
	if err != nil {
		s.log.Warn("reload", "path", path, "err", err)
		s.Broadcast(Response{Type: TypeError, Error: err.Error()})
		return
	}
	s.log.Info("reload", "path", path, "meshes", len(frame.Meshes), "duration", time.Since(start))
	s.Broadcast(Response{Type: TypeFrame, Frame: frame})
}

func generateFile(gen Generator, path string) (*Frame, error) {
	if _, err := config.FormatFromPath(path); err == nil {
		return gen.GenerateScene(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return gen.GenerateRecipe(string(src))
}
