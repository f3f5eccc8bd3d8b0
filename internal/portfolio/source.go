package portfolio

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Source serves the current Profile and can swap it when the content file
// changes on disk.
type Source struct {
	path    string
	current atomic.Pointer[Profile]
	log     zerolog.Logger
}

// NewSource loads path, or the built-in content when path is empty.
func NewSource(path string, log zerolog.Logger) (*Source, error) {
	s := &Source{path: path, log: log}
	if path == "" {
		s.current.Store(Default())
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the profile to render.
func (s *Source) Current() *Profile {
	return s.current.Load()
}

// Reload re-reads the content file. On error the previous profile stays.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	p, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}

// Watch reloads the content file whenever it is written or replaced, until
// ctx is done. The parent directory is watched because editors often save by
// renaming a temp file over the original.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.log.Warn().Err(err).Str("path", s.path).Msg("content reload failed, keeping previous")
				continue
			}
			s.log.Info().Str("path", s.path).Msg("content reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Error().Err(err).Msg("content watcher")
		}
	}
}
