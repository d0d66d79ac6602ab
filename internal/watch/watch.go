// Package watch surfaces log-directory changes as debounced refresh
// signals for the dashboard. fsnotify does not recurse, so the watcher
// covers each root and its existing subdirectories and picks up new
// project directories as they appear.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

type Watcher struct {
	fs       *fsnotify.Watcher
	changes  chan struct{}
	stopCh   chan struct{}
	log      zerolog.Logger
	debounce time.Duration
}

// New starts watching the given roots. Roots that do not exist yet are
// skipped; they will be covered on the next restart once logs appear.
func New(roots []string, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		log:      log,
		debounce: debounce,
	}

	watched := 0
	for _, root := range roots {
		watched += w.addTree(root)
	}
	if watched == 0 {
		log.Debug().Msg("no log directories to watch yet")
	}

	go w.loop()
	return w, nil
}

// Changes delivers one signal per debounced burst of filesystem activity.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) Close() {
	close(w.stopCh)
	w.fs.Close()
}

func (w *Watcher) addTree(root string) int {
	added := 0
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err == nil {
			added++
		}
		return nil
	})
	return added
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("log watcher error")

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}
