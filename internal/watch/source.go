// Package watch re-renders a resume whenever its file changes.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a change to the watched file. Name may be empty on platforms that do not report it.
type Event struct {
	Name string
	Op   string
}

// Source delivers change notifications.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// DefaultDebounce coalesces the burst of events editors emit for a single save.
const DefaultDebounce = 100 * time.Millisecond

// FileSource watches a single file. It watches the parent directory so that
// editors that save by renaming a temporary file are still seen.
type FileSource struct {
	watcher  *fsnotify.Watcher
	base     string
	debounce time.Duration

	events chan Event
	errors chan error

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewFileSource starts watching path.
func NewFileSource(path string) (*FileSource, error) {
	return newFileSource(path, DefaultDebounce)
}

func newFileSource(path string, debounce time.Duration) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	s := &FileSource{
		watcher:  watcher,
		base:     filepath.Base(abs),
		debounce: debounce,
		events:   make(chan Event),
		errors:   make(chan error),
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *FileSource) Events() <-chan Event { return s.events }

func (s *FileSource) Errors() <-chan error { return s.errors }

// Close stops watching and waits for the forwarding goroutine to exit.
func (s *FileSource) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

func (s *FileSource) run() {
	defer s.wg.Done()
	defer close(s.events)

	var (
		pending Event
		timer   <-chan time.Time
	)

	for {
		select {
		case <-s.done:
			return

		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != s.base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue // chmod, remove
			}
			pending = Event{Name: s.base, Op: ev.Op.String()}
			timer = time.After(s.debounce)

		case <-timer:
			timer = nil
			select {
			case s.events <- pending:
			case <-s.done:
				return
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			case <-s.done:
				return
			}
		}
	}
}
