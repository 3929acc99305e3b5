package usecase

import (
	"context"
	"sync"
	"time"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/internal/infrastructure/seed"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

// SessionDeps is shared by every session of the process.
type SessionDeps struct {
	Store            repository.DocumentStore
	Identity         IdentityProvider
	Carts            repository.CartRepository
	Publisher        EventPublisher
	Seed             seed.Dataset
	NotificationTTL  time.Duration
	EnableRoleSwitch bool
	Locale           string

	Collaboration *CollaborationUseCase
	Marketplace   *MarketplaceUseCase
	Connections   *ConnectionUseCase
	Chat          *ChatUseCase
}

// appState is the view model of one session. Only the session's update path
// writes it.
type appState struct {
	products       []entity.Product
	projects       []entity.Project
	artisans       []entity.User
	volunteers     []entity.User
	certificates   []entity.Certificate
	bargains       []entity.BargainRequest
	received       []entity.ConnectionRequest
	sent           []entity.ConnectionRequest
	connections    []entity.ConnectionRequest
	applications   []entity.ProjectApplication
	collaborations []entity.Collaboration
	cart           entity.Cart
	firestoreError string
}

// Session is one client's view of the marketplace: who is signed in, the
// live watches scoped to them and everything derived from those watches.
// Watch callbacks and mutators are serialised on mu.
type Session struct {
	id     string
	deps   SessionDeps
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	machine  *sessionMachine
	identity *entity.Identity
	user     *entity.User
	locale   string
	state    appState
	watches  *watchManager
	convs    *conversationSync
	last     diffTrackers
	latch    DegradedLatch
	notifier *Notifier
}

func NewSession(id string, deps SessionDeps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:      id,
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		machine: newSessionMachine(),
		locale:  deps.Locale,
		convs:   newConversationSync(),
	}
	if s.locale == "" {
		s.locale = "en"
	}
	s.notifier = NewNotifier(deps.NotificationTTL, func(items []entity.Notification) {
		s.publish(entity.SessionEvent{Type: entity.EventNotifications, Data: items})
	})
	s.watches = newWatchManager(ctx, deps.Store, s.run, &s.latch)
	s.applySeed()
	s.machine.Subscribe(func(from, to SessionState) {
		logger.Debug("Session %s: %s -> %s", s.id, from, to)
		s.publish(entity.SessionEvent{Type: entity.EventSession, Data: map[string]string{"state": string(to)}})
	})

	s.mu.Lock()
	s.openGlobalWatches()
	s.mu.Unlock()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// run is the dispatch function of every watch callback.
func (s *Session) run(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

func (s *Session) publish(event entity.SessionEvent) {
	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(s.id, event)
	}
}

func (s *Session) publishDomain(domain string, data interface{}) {
	s.publish(entity.SessionEvent{Type: entity.EventState, Domain: domain, Data: data})
}

func (s *Session) publishViewLocked() {
	s.publish(entity.SessionEvent{Type: entity.EventState, Data: s.viewLocked()})
}

func (s *Session) applySeed() {
	data := s.deps.Seed.Clone()
	s.state.products = data.Products
	s.state.projects = data.Projects
	s.state.artisans = data.Artisans
	s.state.volunteers = data.Volunteers
}

func (s *Session) failer(domain Domain) func(error) {
	return func(err error) { s.watchFailed(domain, err) }
}

// watchFailed is the single error path of every watch. Permission and index
// failures trip the degraded latch once and pin the seed data.
func (s *Session) watchFailed(domain Domain, err error) {
	logger.Error("Error fetching %s: %v", domain, err)
	if !IsDegradingError(err) || !s.latch.Trip() {
		return
	}

	logger.Warn("Session %s: live database unavailable, falling back to sample data", s.id)
	s.state.firestoreError = DegradedMessage
	s.applySeed()
	s.publishViewLocked()
}

func (s *Session) openGlobalWatches() {
	s.watches.open(DomainProducts, repository.NewQuery(repository.CollectionProducts), s.onProducts, s.failer(DomainProducts))
	s.watches.open(DomainProjects, repository.NewQuery(repository.CollectionProjects), s.onProjects, s.failer(DomainProjects))
	s.watches.open(DomainUsers, repository.NewQuery(repository.CollectionUsers), s.onUsers, s.failer(DomainUsers))
}

func decodeLogged[T any, PT entityPtr[T]](domain Domain, docs []repository.Document) []T {
	out, skipped := repository.DecodeAll[T, PT](docs)
	if skipped > 0 {
		logger.Warn("Skipped %d undecodable %s documents", skipped, domain)
	}
	return out
}

func (s *Session) onProducts(docs []repository.Document) {
	products := decodeLogged[entity.Product](DomainProducts, docs)
	if len(products) == 0 {
		products = s.deps.Seed.Clone().Products
	}
	s.state.products = products
	s.publishDomain(string(DomainProducts), products)
}

func (s *Session) onProjects(docs []repository.Document) {
	projects := decodeLogged[entity.Project](DomainProjects, docs)
	if len(projects) == 0 {
		projects = s.deps.Seed.Clone().Projects
	}
	s.state.projects = projects
	s.publishDomain(string(DomainProjects), projects)
}

func (s *Session) onUsers(docs []repository.Document) {
	users := decodeLogged[entity.User](DomainUsers, docs)
	artisans := make([]entity.User, 0, len(users))
	volunteers := make([]entity.User, 0, len(users))
	for _, u := range users {
		switch u.Role {
		case entity.RoleArtisan:
			artisans = append(artisans, u)
		case entity.RoleVolunteer:
			volunteers = append(volunteers, u)
		}
	}

	// The users watch is global, so its previous snapshot stays valid across
	// sign-ins; the diff itself is keyed by the current user.
	if s.user != nil && s.user.Role == entity.RoleVolunteer && s.last.volunteers != nil {
		s.emit(DiffVolunteerCertificates(s.last.volunteers, volunteers, s.user.ID))
	}
	s.last.volunteers = volunteers

	fallback := s.deps.Seed.Clone()
	if len(artisans) == 0 {
		artisans = fallback.Artisans
	}
	if len(volunteers) == 0 {
		volunteers = fallback.Volunteers
	}
	s.state.artisans = artisans
	s.state.volunteers = volunteers
	s.publishDomain(string(DomainUsers), map[string]interface{}{
		"artisans":   artisans,
		"volunteers": volunteers,
	})
}

func (s *Session) emit(transitions []Transition) {
	for _, t := range transitions {
		s.notifier.Notify(t.Message, t.Type, t.Link)
	}
}

func (s *Session) handlerFor(domain Domain) func([]repository.Document) {
	switch domain {
	case DomainCertificates:
		return s.onCertificates
	case DomainConversations:
		return s.onConversations
	case DomainBargainRequests:
		return s.onBargainRequests
	case DomainConnectionsReceived:
		return func(docs []repository.Document) {
			s.state.received = decodeLogged[entity.ConnectionRequest](domain, docs)
			s.onConnectionRequests()
		}
	case DomainConnectionsSent:
		return func(docs []repository.Document) {
			s.state.sent = decodeLogged[entity.ConnectionRequest](domain, docs)
			s.onConnectionRequests()
		}
	case DomainApplications:
		return func(docs []repository.Document) {
			s.state.applications = decodeLogged[entity.ProjectApplication](domain, docs)
			s.publishDomain(string(domain), s.state.applications)
		}
	case DomainCollaborations:
		return func(docs []repository.Document) {
			s.state.collaborations = decodeLogged[entity.Collaboration](domain, docs)
			s.publishDomain(string(domain), s.state.collaborations)
		}
	}
	return func([]repository.Document) {}
}

func (s *Session) onCertificates(docs []repository.Document) {
	s.state.certificates = decodeLogged[entity.Certificate](DomainCertificates, docs)
	s.publishDomain(string(DomainCertificates), s.state.certificates)
}

func (s *Session) onBargainRequests(docs []repository.Document) {
	requests := decodeLogged[entity.BargainRequest](DomainBargainRequests, docs)
	if s.user != nil && s.user.Role == entity.RoleCustomer && s.last.bargains != nil {
		s.emit(DiffBargainRequests(s.last.bargains, requests))
	}
	s.last.bargains = requests
	s.state.bargains = requests
	s.publishDomain(string(DomainBargainRequests), requests)
}

// onConnectionRequests waits until both halves have delivered before it
// merges and diffs.
func (s *Session) onConnectionRequests() {
	if s.state.received == nil || s.state.sent == nil || s.user == nil {
		return
	}
	merged := MergeConnectionRequests(s.state.received, s.state.sent)
	if s.last.connections != nil {
		s.emit(DiffConnectionRequests(s.last.connections, merged, s.user.ID, s.user.Role, s.nameOf))
	}
	s.last.connections = merged
	s.state.connections = merged
	s.publishDomain("connectionRequests", merged)
}

func (s *Session) nameOf(id string) string {
	for _, list := range [][]entity.User{s.state.artisans, s.state.volunteers} {
		for _, u := range list {
			if u.ID == id {
				return u.Name
			}
		}
	}
	return ""
}

func (s *Session) onConversations(docs []repository.Document) {
	convs := decodeLogged[entity.Conversation](DomainConversations, docs)
	s.convs.apply(convs, s.startMessages)
	s.publishDomain(string(DomainConversations), s.convs.view())
}

func (s *Session) startMessages(conversationID string) *watchHandle {
	return s.watches.start(DomainMessages, messagesQuery(conversationID),
		func(docs []repository.Document) {
			msgs := decodeLogged[entity.ChatMessage](DomainMessages, docs)
			if s.convs.setMessages(conversationID, msgs) {
				s.publishDomain(string(DomainConversations), s.convs.view())
			}
		},
		s.failer(DomainMessages),
	)
}

// clearDomain forgets the data and the diff baseline of a scoped domain.
func (s *Session) clearDomain(domain Domain) {
	switch domain {
	case DomainCertificates:
		s.state.certificates = nil
	case DomainConversations:
		s.convs.closeAll()
	case DomainBargainRequests:
		s.state.bargains = nil
		s.last.bargains = nil
	case DomainConnectionsReceived:
		s.state.received = nil
		s.state.connections = nil
		s.last.connections = nil
	case DomainConnectionsSent:
		s.state.sent = nil
		s.state.connections = nil
		s.last.connections = nil
	case DomainApplications:
		s.state.applications = nil
	case DomainCollaborations:
		s.state.collaborations = nil
	}
}

// rescope makes the open scoped watches match the current user. Watches
// whose query is unchanged are left running.
func (s *Session) rescope() {
	desired := scopedQueries(s.user)
	for _, domain := range scopedDomains {
		q, want := desired[domain]
		if !want {
			s.watches.close(domain)
			s.clearDomain(domain)
			continue
		}
		if s.latch.Tripped() {
			continue
		}
		if s.watches.open(domain, q, s.handlerFor(domain), s.failer(domain)) {
			s.clearDomain(domain)
		}
	}
}

// setUser replaces the current profile and re-scopes the watches.
func (s *Session) setUser(u *entity.User) {
	prevID := ""
	if s.user != nil {
		prevID = s.user.ID
	}
	s.user = u
	s.rescope()

	if u != nil && u.ID != prevID && !u.IsGuest() && s.deps.Carts != nil {
		go s.loadCart(u.ID)
	}
}

func (s *Session) loadCart(userID string) {
	cart, err := s.deps.Carts.Load(s.ctx, userID)
	if err != nil {
		logger.Error("Load cart for %s: %v", userID, err)
		return
	}
	s.run(func() {
		if s.user == nil || s.user.ID != userID {
			return
		}
		s.state.cart = *cart
		s.publishDomain("cart", s.state.cart)
	})
}

func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.watches.closeAll()
	s.convs.closeAll()
	s.mu.Unlock()

	s.notifier.Close()
	s.cancel()
}

// OnStateChange registers fn for session state transitions. fn runs with
// the session locked and must not call back into it.
func (s *Session) OnStateChange(fn StateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsubscribe := s.machine.Subscribe(fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsubscribe()
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

func (s *Session) Degraded() bool {
	return s.latch.Tripped()
}

// CurrentUser returns a copy of the acting profile, or nil.
func (s *Session) CurrentUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Identity returns the signed-in account, or nil for guests and signed-out
// sessions.
func (s *Session) Identity() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	ident := *s.identity
	return &ident
}

func (s *Session) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

func (s *Session) SetLocale(locale string) error {
	if locale == "" {
		return errors.BadRequest("locale is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
	s.publishDomain("locale", locale)
	return nil
}

func (s *Session) Notifications() []entity.Notification {
	return s.notifier.List()
}

func (s *Session) RemoveNotification(id string) {
	s.notifier.Remove(id)
}

// Notify adds a transient notification to the session.
func (s *Session) Notify(message string, typ entity.NotificationType, link *entity.NotificationLink) string {
	return s.notifier.Notify(message, typ, link)
}
