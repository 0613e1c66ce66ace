// Package watch monitors the dataset file backing a tour session and
// signals when it changes on disk, so the session can reload the table and
// rebuild the path without restarting. fsnotify is the primary mechanism;
// a stat-based poller covers filesystems where inotify is unreliable.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/condtour/pkg/debug"
)

// Defaults for debounce and polling.
const (
	DefaultDebounce     = 200 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

// Errors reported through the OnError callback.
var (
	ErrFileRemoved    = errors.New("watch: dataset file was removed")
	ErrAlreadyStarted = errors.New("watch: watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long rapid write bursts are coalesced before one
// change notification fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked after a debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify entirely. Also reachable via CT_FORCE_POLL.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one dataset file for modification.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	fsw       *fsnotify.Watcher
	polling   bool
	lastMtime time.Time
	lastSize  int64

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	debMu    sync.Mutex
	debTimer *time.Timer
	changeCh chan struct{}
}

// New creates a watcher for the given dataset path. The watcher is inert
// until Start is called.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself so editors that replace the file atomically are still seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	} else {
		w.lastMtime = time.Time{}
		w.lastSize = 0
	}

	w.polling = w.forcePoll || envBool("CT_FORCE_POLL")
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			w.polling = true
		} else if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			fsw.Close()
			w.polling = true
		} else {
			w.fsw = fsw
			go w.watchEvents()
		}
	}
	if w.polling {
		debug.Log("watching %s in polling mode", w.path)
		go w.watchPolling()
	}
	w.started = true
	return nil
}

// Stop halts watching. The change channel stays open so a reader blocked
// on Changed does not spin on a closed channel.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debMu.Lock()
	if w.debTimer != nil {
		w.debTimer.Stop()
		w.debTimer = nil
	}
	w.debMu.Unlock()
	w.started = false
}

// Changed returns a channel that receives after each debounced change.
// Alternative to the OnChange callback for select-based loops.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

// IsPolling reports whether the stat-based fallback is active.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether Start has run without a matching Stop.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (w *Watcher) watchEvents() {
	target := filepath.Base(w.path)

	w.mu.RLock()
	if w.fsw == nil {
		w.mu.RUnlock()
		return
	}
	events := w.fsw.Events
	errs := w.fsw.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.trigger()
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				if os.IsNotExist(err) {
					w.mu.RLock()
					hadFile := !w.lastMtime.IsZero()
					w.mu.RUnlock()
					if hadFile {
						w.onError(ErrFileRemoved)
					}
				} else {
					w.onError(err)
				}
				continue
			}
			w.mu.Lock()
			changed := info.ModTime().After(w.lastMtime) || info.Size() != w.lastSize
			if changed {
				w.lastMtime = info.ModTime()
				w.lastSize = info.Size()
			}
			w.mu.Unlock()
			if changed {
				w.trigger()
			}
		}
	}
}

// trigger coalesces bursts: the notification fires once the file has been
// quiet for the debounce window.
func (w *Watcher) trigger() {
	w.debMu.Lock()
	defer w.debMu.Unlock()
	if w.debTimer != nil {
		w.debTimer.Stop()
	}
	w.debTimer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}
	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
