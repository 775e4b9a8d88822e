package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// FileKind says what a changed file holds.
type FileKind uint8

const (
	ConfigFile FileKind = iota + 1
	ScriptFile
)

func (k FileKind) String() string {
	switch k {
	case ConfigFile:
		return "config"
	case ScriptFile:
		return "script"
	default:
		return "unknown"
	}
}

// Change is one debounced file change.
type Change struct {
	Path string
	Kind FileKind
}

// kindOf classifies path by extension; zero means the file is not watched.
func kindOf(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ConfigFile
	case ".tengo":
		return ScriptFile
	}
	return 0
}

// Watcher reports changed config and contact script files. Each path arrives
// on Events at most once per debounce window.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches each path, which may be a directory or a single file.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := w.Add(path); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind := kindOf(event.Name)
			if kind == 0 {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- Change{Path: event.Name, Kind: kind}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
