package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"artisanx/internal/domain/repository"
	"artisanx/pkg/logger"
)

type firestoreDocumentStore struct {
	client *firestore.Client
}

func NewFirestoreDocumentStore(client *firestore.Client) repository.DocumentStore {
	return &firestoreDocumentStore{
		client: client,
	}
}

type firestoreDocument struct {
	id   string
	snap *firestore.DocumentSnapshot
}

func (d *firestoreDocument) ID() string { return d.id }

func (d *firestoreDocument) Exists() bool { return d.snap != nil && d.snap.Exists() }

func (d *firestoreDocument) DataTo(v interface{}) error {
	if !d.Exists() {
		return errors.Errorf("document %s does not exist", d.id)
	}
	return d.snap.DataTo(v)
}

func wrap(snap *firestore.DocumentSnapshot) *firestoreDocument {
	return &firestoreDocument{id: snap.Ref.ID, snap: snap}
}

func wrapAll(snaps []*firestore.DocumentSnapshot) []repository.Document {
	docs := make([]repository.Document, len(snaps))
	for i, s := range snaps {
		docs[i] = wrap(s)
	}
	return docs
}

func (s *firestoreDocumentStore) doc(ref repository.DocRef) *firestore.DocumentRef {
	return s.client.Collection(ref.Collection).Doc(ref.ID)
}

func (s *firestoreDocumentStore) query(q repository.Query) firestore.Query {
	query := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == repository.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	return query
}

// toFirestore swaps the store-neutral server timestamp sentinel for the
// firestore one, at any map depth.
func toFirestore(v interface{}) interface{} {
	if repository.IsServerTimestamp(v) {
		return firestore.ServerTimestamp
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	out := make(map[string]interface{}, len(m))
	for k, val := range m {
		out[k] = toFirestore(val)
	}
	return out
}

func toUpdates(updates []repository.Update) []firestore.Update {
	out := make([]firestore.Update, len(updates))
	for i, u := range updates {
		out[i] = firestore.Update{Path: u.Path, Value: toFirestore(u.Value)}
	}
	return out
}

func (s *firestoreDocumentStore) NewRef(collection string) repository.DocRef {
	return repository.Doc(collection, s.client.Collection(collection).NewDoc().ID)
}

func (s *firestoreDocumentStore) Get(ctx context.Context, ref repository.DocRef) (repository.Document, error) {
	snap, err := s.doc(ref).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &firestoreDocument{id: ref.ID}, nil
		}
		return nil, errors.Wrapf(err, "get %s", ref.Path())
	}
	return wrap(snap), nil
}

func (s *firestoreDocumentStore) Find(ctx context.Context, q repository.Query) ([]repository.Document, error) {
	snaps, err := s.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", q.Key())
	}
	return wrapAll(snaps), nil
}

func (s *firestoreDocumentStore) Add(ctx context.Context, collection string, data interface{}) (repository.DocRef, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(data))
	if err != nil {
		return repository.DocRef{}, errors.Wrapf(err, "add to %s", collection)
	}
	return repository.Doc(collection, ref.ID), nil
}

func (s *firestoreDocumentStore) Set(ctx context.Context, ref repository.DocRef, data interface{}, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := s.doc(ref).Set(ctx, toFirestore(data), opts...); err != nil {
		return errors.Wrapf(err, "set %s", ref.Path())
	}
	return nil
}

func (s *firestoreDocumentStore) Update(ctx context.Context, ref repository.DocRef, updates []repository.Update) error {
	if _, err := s.doc(ref).Update(ctx, toUpdates(updates)); err != nil {
		return errors.Wrapf(err, "update %s", ref.Path())
	}
	return nil
}

func (s *firestoreDocumentStore) Batch() repository.WriteBatch {
	return &firestoreBatch{store: s}
}

type firestoreWrite struct {
	ref     repository.DocRef
	data    interface{}
	updates []repository.Update
}

// firestoreBatch commits through a transaction, which gives the same
// all-or-nothing visibility as a write batch.
type firestoreBatch struct {
	store  *firestoreDocumentStore
	writes []firestoreWrite
}

func (b *firestoreBatch) Set(ref repository.DocRef, data interface{}) repository.WriteBatch {
	b.writes = append(b.writes, firestoreWrite{ref: ref, data: data})
	return b
}

func (b *firestoreBatch) Update(ref repository.DocRef, updates []repository.Update) repository.WriteBatch {
	b.writes = append(b.writes, firestoreWrite{ref: ref, updates: updates})
	return b
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	return b.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, w := range b.writes {
			var err error
			if w.updates != nil {
				err = tx.Update(b.store.doc(w.ref), toUpdates(w.updates))
			} else {
				err = tx.Set(b.store.doc(w.ref), toFirestore(w.data))
			}
			if err != nil {
				return errors.Wrapf(err, "batch write %s", w.ref.Path())
			}
		}
		return nil
	})
}

type firestoreTransaction struct {
	store *firestoreDocumentStore
	tx    *firestore.Transaction
}

func (t *firestoreTransaction) Get(ref repository.DocRef) (repository.Document, error) {
	snap, err := t.tx.Get(t.store.doc(ref))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &firestoreDocument{id: ref.ID}, nil
		}
		return nil, err
	}
	return wrap(snap), nil
}

func (t *firestoreTransaction) Find(q repository.Query) ([]repository.Document, error) {
	snaps, err := t.tx.Documents(t.store.query(q)).GetAll()
	if err != nil {
		return nil, err
	}
	return wrapAll(snaps), nil
}

func (t *firestoreTransaction) Set(ref repository.DocRef, data interface{}) error {
	return t.tx.Set(t.store.doc(ref), toFirestore(data))
}

func (t *firestoreTransaction) Update(ref repository.DocRef, updates []repository.Update) error {
	return t.tx.Update(t.store.doc(ref), toUpdates(updates))
}

func (s *firestoreDocumentStore) RunTransaction(ctx context.Context, fn func(context.Context, repository.Transaction) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTransaction{store: s, tx: tx})
	})
}

func (s *firestoreDocumentStore) Watch(ctx context.Context, q repository.Query, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) repository.Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	iter := s.query(q).Snapshots(ctx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || err == iterator.Done || status.Code(err) == codes.Canceled {
					return
				}
				logger.Debug("Watch %s Error: %v", q.Key(), err)
				if onError != nil {
					onError(err)
				}
				return
			}

			snaps, err := snap.Documents.GetAll()
			if err != nil {
				if ctx.Err() == nil && onError != nil {
					onError(err)
				}
				return
			}
			onSnapshot(wrapAll(snaps))
		}
	}()

	return func() { cancel() }
}

func (s *firestoreDocumentStore) WatchDoc(ctx context.Context, ref repository.DocRef, onSnapshot repository.DocSnapshotFunc, onError repository.ErrorFunc) repository.Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	iter := s.doc(ref).Snapshots(ctx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || err == iterator.Done || status.Code(err) == codes.Canceled {
					return
				}
				logger.Debug("WatchDoc %s Error: %v", ref.Path(), err)
				if onError != nil {
					onError(err)
				}
				return
			}
			if snap == nil || !snap.Exists() {
				onSnapshot(&firestoreDocument{id: ref.ID, snap: snap})
				continue
			}
			onSnapshot(wrap(snap))
		}
	}()

	return func() { cancel() }
}
