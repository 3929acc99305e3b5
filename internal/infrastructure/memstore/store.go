// Package memstore is an in-process DocumentStore with live watches. It
// backs local development without Firebase credentials and the test suites.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"artisanx/internal/domain/repository"
	apperrors "artisanx/pkg/errors"
)

type Store struct {
	// writeMu serialises commits and transactions so a transaction's reads
	// stay valid until it commits.
	writeMu sync.Mutex

	mu        sync.RWMutex
	docs      map[string]map[string]map[string]interface{}
	watchers  map[int]*watcher
	nextWatch int
	failures  map[string]error
	nowFn     func() time.Time
	lastStamp time.Time
}

func New() *Store {
	return &Store{
		docs:     map[string]map[string]map[string]interface{}{},
		watchers: map[int]*watcher{},
		failures: map[string]error{},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// stamp returns a commit time strictly after the previous one.
func (s *Store) stamp() time.Time {
	now := s.nowFn()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = now
	return now
}

func (s *Store) NewRef(collection string) repository.DocRef {
	return repository.Doc(collection, uuid.NewString())
}

func (s *Store) Get(_ context.Context, ref repository.DocRef) (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(ref), nil
}

func (s *Store) getLocked(ref repository.DocRef) *document {
	data, ok := s.docs[ref.Collection][ref.ID]
	if !ok {
		return &document{id: ref.ID}
	}
	return &document{id: ref.ID, data: copyData(data), exists: true}
}

func (s *Store) Find(_ context.Context, q repository.Query) ([]repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(q), nil
}

func (s *Store) findLocked(q repository.Query) []repository.Document {
	now := s.nowFn()
	var found []*document
	for id, data := range s.docs[q.Collection] {
		if matches(data, q.Filters, now) {
			found = append(found, &document{id: id, data: copyData(data), exists: true})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if q.OrderBy != "" {
			a, _ := lookup(found[i].data, q.OrderBy)
			b, _ := lookup(found[j].data, q.OrderBy)
			if c := compareValues(a, b); c != 0 {
				if q.Direction == repository.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return found[i].id < found[j].id
	})

	out := make([]repository.Document, len(found))
	for i, d := range found {
		out[i] = d
	}
	return out
}

func (s *Store) Add(ctx context.Context, collection string, data interface{}) (repository.DocRef, error) {
	ref := s.NewRef(collection)
	if err := s.Batch().Set(ref, data).Commit(ctx); err != nil {
		return repository.DocRef{}, err
	}
	return ref, nil
}

func (s *Store) Set(ctx context.Context, ref repository.DocRef, data interface{}, mergeFields bool) error {
	b := &batch{store: s}
	b.writes = append(b.writes, write{ref: ref, data: data, merge: mergeFields})
	return b.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, ref repository.DocRef, updates []repository.Update) error {
	return s.Batch().Update(ref, updates).Commit(ctx)
}

func (s *Store) Batch() repository.WriteBatch {
	return &batch{store: s}
}

// RunTransaction runs fn once. The store is serialised for its duration so
// there is never contention to retry on. fn must write only through tx.
func (s *Store) RunTransaction(ctx context.Context, fn func(context.Context, repository.Transaction) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx := &transaction{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return s.commit(tx.writes)
}

type write struct {
	ref     repository.DocRef
	data    interface{}
	merge   bool
	updates []repository.Update
}

type batch struct {
	store  *Store
	writes []write
}

func (b *batch) Set(ref repository.DocRef, data interface{}) repository.WriteBatch {
	b.writes = append(b.writes, write{ref: ref, data: data})
	return b
}

func (b *batch) Update(ref repository.DocRef, updates []repository.Update) repository.WriteBatch {
	b.writes = append(b.writes, write{ref: ref, updates: updates})
	return b
}

func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.store.writeMu.Lock()
	defer b.store.writeMu.Unlock()
	return b.store.commit(b.writes)
}

type transaction struct {
	store  *Store
	writes []write
}

var errReadAfterWrite = errors.New("memstore: transaction reads must precede writes")

func (tx *transaction) Get(ref repository.DocRef) (repository.Document, error) {
	if len(tx.writes) > 0 {
		return nil, errReadAfterWrite
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.getLocked(ref), nil
}

func (tx *transaction) Find(q repository.Query) ([]repository.Document, error) {
	if len(tx.writes) > 0 {
		return nil, errReadAfterWrite
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.findLocked(q), nil
}

func (tx *transaction) Set(ref repository.DocRef, data interface{}) error {
	tx.writes = append(tx.writes, write{ref: ref, data: data})
	return nil
}

func (tx *transaction) Update(ref repository.DocRef, updates []repository.Update) error {
	tx.writes = append(tx.writes, write{ref: ref, updates: updates})
	return nil
}

// commit applies every write or none of them. Callers hold writeMu.
func (s *Store) commit(writes []write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	staged := map[repository.DocRef]map[string]interface{}{}
	current := func(ref repository.DocRef) (map[string]interface{}, bool) {
		if data, ok := staged[ref]; ok {
			return data, true
		}
		data, ok := s.docs[ref.Collection][ref.ID]
		if !ok {
			return nil, false
		}
		return copyData(data), true
	}

	for _, w := range writes {
		if w.ref.Collection == "" || w.ref.ID == "" {
			return apperrors.BadRequest("document reference is incomplete", nil)
		}
		existing, exists := current(w.ref)

		if w.updates == nil {
			data, err := normalize(w.data, now)
			if err != nil {
				return errors.Wrapf(err, "encode %s", w.ref.Path())
			}
			if w.merge && exists {
				merge(existing, data)
				data = existing
			}
			staged[w.ref] = data
			continue
		}

		if !exists {
			return apperrors.NotFound(w.ref.Path(), nil)
		}
		for _, u := range w.updates {
			value, err := normalizeValue(u.Value, now)
			if err != nil {
				return errors.Wrapf(err, "encode %s.%s", w.ref.Path(), u.Path)
			}
			assign(existing, u.Path, value)
		}
		staged[w.ref] = existing
	}

	changed := map[string]bool{}
	for ref, data := range staged {
		if s.docs[ref.Collection] == nil {
			s.docs[ref.Collection] = map[string]map[string]interface{}{}
		}
		s.docs[ref.Collection][ref.ID] = data
		changed[ref.Collection] = true
	}

	for _, w := range s.watchers {
		if changed[w.collection()] {
			s.deliverLocked(w)
		}
	}
	return nil
}

func (s *Store) Watch(ctx context.Context, q repository.Query, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) repository.Unsubscribe {
	w := newWatcher(0)
	w.query = &q
	w.onSnapshot = onSnapshot
	w.onError = onError
	return s.register(ctx, w)
}

func (s *Store) WatchDoc(ctx context.Context, ref repository.DocRef, onSnapshot repository.DocSnapshotFunc, onError repository.ErrorFunc) repository.Unsubscribe {
	w := newWatcher(0)
	w.ref = &ref
	w.onDoc = onSnapshot
	w.onError = onError
	return s.register(ctx, w)
}

func (s *Store) register(ctx context.Context, w *watcher) repository.Unsubscribe {
	s.mu.Lock()
	s.nextWatch++
	w.id = s.nextWatch
	go w.run()

	if err, failing := s.failures[w.collection()]; failing {
		s.failLocked(w, err)
	} else {
		s.watchers[w.id] = w
		s.deliverLocked(w)
	}
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.unregister(w)
		case <-w.done:
		}
	}()

	return func() { s.unregister(w) }
}

func (s *Store) unregister(w *watcher) {
	s.mu.Lock()
	delete(s.watchers, w.id)
	s.mu.Unlock()
	w.close()
}

// deliverLocked queues the watcher's current result if it differs from the
// last one delivered.
func (s *Store) deliverLocked(w *watcher) {
	if w.query != nil {
		docs := s.findLocked(*w.query)
		fp := fingerprint(docs)
		if w.primed && fp == w.fingerprint {
			return
		}
		w.primed, w.fingerprint = true, fp
		w.enqueue(func() { w.onSnapshot(docs) })
		return
	}

	doc := s.getLocked(*w.ref)
	fp := fingerprint([]repository.Document{doc})
	if w.primed && fp == w.fingerprint {
		return
	}
	w.primed, w.fingerprint = true, fp
	w.enqueue(func() { w.onDoc(doc) })
}

func (s *Store) failLocked(w *watcher, err error) {
	delete(s.watchers, w.id)
	w.enqueue(func() {
		if w.onError != nil {
			w.onError(err)
		}
	})
	w.seal()
}

// FailCollection makes every current and future watch on collection fail
// with err, the way a revoked security rule or a missing index would.
func (s *Store) FailCollection(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[collection] = err
	for _, w := range s.watchers {
		if w.collection() == collection {
			s.failLocked(w, err)
		}
	}
}

// ActiveWatches reports how many watches are currently registered.
func (s *Store) ActiveWatches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

func fingerprint(docs []repository.Document) string {
	type entry struct {
		ID     string                 `json:"id"`
		Exists bool                   `json:"exists"`
		Data   map[string]interface{} `json:"data"`
	}
	entries := make([]entry, len(docs))
	for i, d := range docs {
		md := d.(*document)
		entries[i] = entry{ID: md.id, Exists: md.exists, Data: md.data}
	}
	b, _ := json.Marshal(entries)
	return string(b)
}
