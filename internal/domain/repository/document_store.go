package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	CollectionUsers               = "users"
	CollectionProducts            = "products"
	CollectionProjects            = "projects"
	CollectionCertificates        = "certificates"
	CollectionConversations       = "conversations"
	CollectionMessages            = "messages"
	CollectionBargainRequests     = "bargainRequests"
	CollectionConnectionRequests  = "connectionRequests"
	CollectionProjectApplications = "projectApplications"
	CollectionCollaborations      = "collaborations"
)

// MessagesCollection is the path of a conversation's nested messages.
func MessagesCollection(conversationID string) string {
	return CollectionConversations + "/" + conversationID + "/" + CollectionMessages
}

const (
	OpEqual         = "=="
	OpArrayContains = "array-contains"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Query selects documents of one collection. Collection may be a nested
// path such as conversations/{id}/messages.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  Direction
}

func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Where(field, op string, value interface{}) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Key is a canonical string for the query. Two queries with the same key
// select the same documents.
func (q Query) Key() string {
	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		parts = append(parts, fmt.Sprintf("%s %s %v", f.Field, f.Op, f.Value))
	}
	sort.Strings(parts)
	key := q.Collection + "?" + strings.Join(parts, "&")
	if q.OrderBy != "" {
		key += fmt.Sprintf("#%s:%d", q.OrderBy, q.Direction)
	}
	return key
}

type DocRef struct {
	Collection string
	ID         string
}

func Doc(collection, id string) DocRef {
	return DocRef{Collection: collection, ID: id}
}

func (r DocRef) Path() string {
	return r.Collection + "/" + r.ID
}

// Document is one stored document. A Document returned by WatchDoc or a
// transaction Get may not exist.
type Document interface {
	ID() string
	Exists() bool
	DataTo(v interface{}) error
}

type Update struct {
	Path  string
	Value interface{}
}

type serverTimestamp struct{}

// ServerTimestamp may be used as a field value (at any map depth) in writes;
// the store replaces it with its own commit time.
var ServerTimestamp interface{} = serverTimestamp{}

func IsServerTimestamp(v interface{}) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

type SnapshotFunc func(docs []Document)
type DocSnapshotFunc func(doc Document)
type ErrorFunc func(err error)

// Unsubscribe cancels a watch. It never blocks on callback delivery and is
// safe to call more than once.
type Unsubscribe func()

// WriteBatch collects writes that are committed together or not at all.
type WriteBatch interface {
	Set(ref DocRef, data interface{}) WriteBatch
	Update(ref DocRef, updates []Update) WriteBatch
	Commit(ctx context.Context) error
}

// Transaction reads must all happen before any write.
type Transaction interface {
	Get(ref DocRef) (Document, error)
	Find(q Query) ([]Document, error)
	Set(ref DocRef, data interface{}) error
	Update(ref DocRef, updates []Update) error
}

// DocumentStore is the multi-collection live document database. Watch
// callbacks are delivered on store goroutines, in order per watch, and never
// synchronously from the Watch call itself. After an error callback the
// watch is dead.
type DocumentStore interface {
	NewRef(collection string) DocRef
	Get(ctx context.Context, ref DocRef) (Document, error)
	Find(ctx context.Context, q Query) ([]Document, error)
	Add(ctx context.Context, collection string, data interface{}) (DocRef, error)
	Set(ctx context.Context, ref DocRef, data interface{}, merge bool) error
	Update(ctx context.Context, ref DocRef, updates []Update) error
	Batch() WriteBatch
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
	Watch(ctx context.Context, q Query, onSnapshot SnapshotFunc, onError ErrorFunc) Unsubscribe
	WatchDoc(ctx context.Context, ref DocRef, onSnapshot DocSnapshotFunc, onError ErrorFunc) Unsubscribe
}
