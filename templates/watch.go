package templates

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever a template file in Dir is written or
// created, debouncing bursts of events. It blocks until ctx is done. The
// optional onReload is called after each reload attempt.
func (s *Store) Watch(ctx context.Context, onReload func(error)) error {
	if s.opts.Dir == "" {
		return fmt.Errorf("templates: no directory to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.opts.Dir, err)
	}
	s.opts.Logger.Info("Watching templates", "dir", s.opts.Dir, "debounce", s.opts.Debounce)

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		reload = func() {
			err := s.Reload()
			if err != nil {
				s.opts.Logger.Warn("Template reload failed", "error", err)
			}
			if onReload != nil {
				onReload(err)
			}
		}
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if name != AgentFile && name != CreatorFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.opts.Debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.opts.Logger.Warn("Template watcher error", "error", err)
		}
	}
}
