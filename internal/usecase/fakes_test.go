package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/internal/domain/service"
	"artisanx/internal/infrastructure/memstore"
	"artisanx/internal/infrastructure/seed"
)

type recordingSink struct {
	mu    sync.Mutex
	items []entity.Notification
}

func (r *recordingSink) Notify(message string, typ entity.NotificationType, link *entity.NotificationLink) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := newNotificationID()
	r.items = append(r.items, entity.Notification{ID: id, Message: message, Type: typ, Link: link})
	return id
}

func (r *recordingSink) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.items))
	for i, n := range r.items {
		out[i] = n.Message
	}
	return out
}

type fakeTextGen struct {
	mu    sync.Mutex
	calls []service.CertificateTextRequest
	err   error
}

func (f *fakeTextGen) GenerateCertificateText(_ context.Context, req service.CertificateTextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return "In recognition of " + req.RecipientName, nil
}

func (f *fakeTextGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type account struct {
	password string
	uid      string
}

type fakeIdentity struct {
	mu       sync.Mutex
	accounts map[string]account
	names    map[string]string
	signOuts []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]account{}, names: map[string]string{}}
}

func (f *fakeIdentity) register(email, password, uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = account{password: password, uid: uid}
}

func (f *fakeIdentity) SignInWithPassword(_ context.Context, email, password string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return nil, errors.New("INVALID_LOGIN_CREDENTIALS")
	}
	return &entity.Identity{UID: acc.uid, Email: email, DisplayName: f.names[acc.uid]}, nil
}

func (f *fakeIdentity) SignInWithProvider(_ context.Context, providerID, credential string) (*entity.Identity, error) {
	return &entity.Identity{UID: providerID + "-" + credential}, nil
}

func (f *fakeIdentity) CreateIdentity(_ context.Context, email, password string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return nil, errors.New("EMAIL_EXISTS")
	}
	uid := "uid-" + email
	f.accounts[email] = account{password: password, uid: uid}
	return &entity.Identity{UID: uid, Email: email}, nil
}

func (f *fakeIdentity) UpdateDisplayName(_ context.Context, uid, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[uid] = name
	return nil
}

func (f *fakeIdentity) SignOut(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, uid)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []entity.SessionEvent
}

func (p *fakePublisher) Publish(_ string, event entity.SessionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) count(typ string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]entity.Cart
}

func (f *fakeCarts) Load(_ context.Context, userID string) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.carts[userID]
	return &c, nil
}

func (f *fakeCarts) Save(_ context.Context, userID string, cart *entity.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[userID] = *cart
	return nil
}

func (f *fakeCarts) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	return nil
}

func (f *fakeCarts) get(userID string) (entity.Cart, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	return c, ok
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type harness struct {
	store     *memstore.Store
	identity  *fakeIdentity
	textGen   *fakeTextGen
	publisher *fakePublisher
	carts     *fakeCarts
	deps      SessionDeps
}

func newHarness() *harness {
	store := memstore.New()
	h := &harness{
		store:     store,
		identity:  newFakeIdentity(),
		textGen:   &fakeTextGen{},
		publisher: &fakePublisher{},
		carts:     &fakeCarts{carts: map[string]entity.Cart{}},
	}
	h.deps = SessionDeps{
		Store:            store,
		Identity:         h.identity,
		Carts:            h.carts,
		Publisher:        h.publisher,
		Seed:             seed.Default(),
		NotificationTTL:  time.Minute,
		EnableRoleSwitch: true,
		Locale:           "en",
		Collaboration:    NewCollaborationUseCase(store, h.textGen),
		Marketplace:      NewMarketplaceUseCase(store, nil),
		Connections:      NewConnectionUseCase(store, nil),
		Chat:             NewChatUseCase(store, nil),
	}
	return h
}

func (h *harness) putUser(ctx context.Context, u entity.User) {
	if err := h.store.Set(ctx, repository.Doc(repository.CollectionUsers, u.ID), u, false); err != nil {
		panic(err)
	}
}

func (h *harness) putProject(ctx context.Context, p entity.Project) {
	if err := h.store.Set(ctx, repository.Doc(repository.CollectionProjects, p.ID), p, false); err != nil {
		panic(err)
	}
}

func (h *harness) putProduct(ctx context.Context, p entity.Product) {
	if err := h.store.Set(ctx, repository.Doc(repository.CollectionProducts, p.ID), p, false); err != nil {
		panic(err)
	}
}
