package persistence

import (
	"context"
	"fmt"

	"github.com/quenio/agerun/pkg/config/provider"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/method"
)

// Watcher reloads a methodology file whenever it changes on disk,
// reusing the teacher's fsnotify-backed FileProvider (section 8's
// ambient addition: spec.md's Non-goals never exclude hot-reloading a
// methodology file, so this is carried forward from the teacher's own
// config-watch concern rather than hand-rolled).
type Watcher struct {
	provider *provider.FileProvider
}

// WatchMethodology starts watching path for changes and reloads m
// whenever the file is written. It returns immediately; the watch
// runs until ctx is cancelled or Close is called.
func WatchMethodology(ctx context.Context, path string, m *method.Methodology, log *eventlog.Log) (*Watcher, error) {
	p, err := provider.NewFileProvider(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: watch methodology file: %w", err)
	}
	changes, err := p.Watch(ctx)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("persistence: watch methodology file: %w", err)
	}

	go func() {
		for range changes {
			if err := ReloadMethodology(path, m, log); err != nil {
				log.Error(fmt.Sprintf("persistence: methodology reload failed: %s", err))
			}
		}
	}()

	return &Watcher{provider: p}, nil
}

// Close stops the watch and releases its resources.
func (w *Watcher) Close() error {
	return w.provider.Close()
}
