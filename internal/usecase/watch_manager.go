package usecase

import (
	"context"

	"artisanx/internal/domain/repository"
)

type Domain string

const (
	DomainProducts            Domain = "products"
	DomainProjects            Domain = "projects"
	DomainUsers               Domain = "users"
	DomainProfile             Domain = "profile"
	DomainCertificates        Domain = "certificates"
	DomainConversations       Domain = "conversations"
	DomainMessages            Domain = "messages"
	DomainBargainRequests     Domain = "bargainRequests"
	DomainConnectionsReceived Domain = "connectionRequests:received"
	DomainConnectionsSent     Domain = "connectionRequests:sent"
	DomainApplications        Domain = "projectApplications"
	DomainCollaborations      Domain = "collaborations"
)

type watchHandle struct {
	domain Domain
	scope  string
	cancel repository.Unsubscribe
	active bool
	// gated handles go quiet once the degraded latch is set.
	gated bool
}

func (h *watchHandle) close() {
	if h == nil || !h.active {
		return
	}
	h.active = false
	h.cancel()
}

// watchManager keeps at most one live watch per domain. All methods and all
// wrapped callbacks run inside dispatch, so handle state needs no locking.
type watchManager struct {
	ctx      context.Context
	store    repository.DocumentStore
	dispatch func(func())
	latch    *DegradedLatch
	handles  map[Domain]*watchHandle
}

func newWatchManager(ctx context.Context, store repository.DocumentStore, dispatch func(func()), latch *DegradedLatch) *watchManager {
	return &watchManager{
		ctx:      ctx,
		store:    store,
		dispatch: dispatch,
		latch:    latch,
		handles:  make(map[Domain]*watchHandle),
	}
}

// guard drops callbacks for closed handles and, once the latch is set, every
// snapshot of a gated handle.
func (m *watchManager) guard(h *watchHandle, fn func()) {
	m.dispatch(func() {
		if !h.active || (h.gated && m.latch.Tripped()) {
			return
		}
		fn()
	})
}

func (m *watchManager) guardError(h *watchHandle, err error, onErr func(error)) {
	m.dispatch(func() {
		if !h.active {
			return
		}
		h.active = false
		if m.handles[h.domain] == h {
			delete(m.handles, h.domain)
		}
		onErr(err)
	})
}

// start opens an unmanaged query watch. The caller owns the handle.
func (m *watchManager) start(domain Domain, q repository.Query, onDocs func([]repository.Document), onErr func(error)) *watchHandle {
	h := &watchHandle{domain: domain, scope: q.Key(), active: true, gated: true}
	h.cancel = m.store.Watch(m.ctx, q,
		func(docs []repository.Document) { m.guard(h, func() { onDocs(docs) }) },
		func(err error) { m.guardError(h, err, onErr) },
	)
	return h
}

// open makes q the domain's watch. It reports false when a watch with the
// same scope is already live, leaving it untouched.
func (m *watchManager) open(domain Domain, q repository.Query, onDocs func([]repository.Document), onErr func(error)) bool {
	if h, ok := m.handles[domain]; ok && h.active && h.scope == q.Key() {
		return false
	}
	m.close(domain)
	m.handles[domain] = m.start(domain, q, onDocs, onErr)
	return true
}

// openDoc watches a single document. Document watches carry the signed-in
// profile, so they keep delivering after the latch is set.
func (m *watchManager) openDoc(domain Domain, ref repository.DocRef, onDoc func(repository.Document), onErr func(error)) bool {
	if h, ok := m.handles[domain]; ok && h.active && h.scope == ref.Path() {
		return false
	}
	m.close(domain)

	h := &watchHandle{domain: domain, scope: ref.Path(), active: true}
	h.cancel = m.store.WatchDoc(m.ctx, ref,
		func(doc repository.Document) { m.guard(h, func() { onDoc(doc) }) },
		func(err error) { m.guardError(h, err, onErr) },
	)
	m.handles[domain] = h
	return true
}

// close reports whether a watch was open for the domain.
func (m *watchManager) close(domain Domain) bool {
	h, ok := m.handles[domain]
	if !ok {
		return false
	}
	delete(m.handles, domain)
	h.close()
	return true
}

func (m *watchManager) closeAll() {
	for domain := range m.handles {
		m.close(domain)
	}
}
