package memstore

import (
	"sync"

	"artisanx/internal/domain/repository"
)

// watcher delivers callbacks in order on its own goroutine. close stops
// delivery immediately; seal lets queued callbacks drain first.
type watcher struct {
	id          int
	query       *repository.Query
	ref         *repository.DocRef
	onSnapshot  repository.SnapshotFunc
	onDoc       repository.DocSnapshotFunc
	onError     repository.ErrorFunc
	fingerprint string
	primed      bool

	mu     sync.Mutex
	queue  []func()
	closed bool
	sealed bool
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newWatcher(id int) *watcher {
	return &watcher{
		id:   id,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (w *watcher) collection() string {
	if w.query != nil {
		return w.query.Collection
	}
	return w.ref.Collection
}

func (w *watcher) enqueue(fn func()) {
	w.mu.Lock()
	if w.closed || w.sealed {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, fn)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) seal() {
	w.mu.Lock()
	w.sealed = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) close() {
	w.mu.Lock()
	w.closed = true
	w.queue = nil
	w.mu.Unlock()
	w.once.Do(func() { close(w.done) })
}

func (w *watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}

		for {
			w.mu.Lock()
			if w.closed {
				w.mu.Unlock()
				return
			}
			if len(w.queue) == 0 {
				sealed := w.sealed
				w.mu.Unlock()
				if sealed {
					w.close()
					return
				}
				break
			}
			fn := w.queue[0]
			w.queue = w.queue[1:]
			w.mu.Unlock()

			fn()
		}
	}
}
