package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanx/internal/adapter/api"
	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/internal/infrastructure/memstore"
	"artisanx/internal/infrastructure/seed"
	"artisanx/internal/infrastructure/textgen"
	ws "artisanx/internal/infrastructure/websocket"
	"artisanx/internal/usecase"
	apperrors "artisanx/pkg/errors"
)

type stubIdentity struct{}

func (stubIdentity) SignInWithPassword(_ context.Context, email, password string) (*entity.Identity, error) {
	if password != "secret" {
		return nil, apperrors.Unauthorized("Invalid credentials", nil)
	}
	return &entity.Identity{UID: "uid-" + email, Email: email}, nil
}

func (stubIdentity) SignInWithProvider(context.Context, string, string) (*entity.Identity, error) {
	return nil, apperrors.Unauthorized("Invalid credentials", nil)
}

func (stubIdentity) CreateIdentity(_ context.Context, email, _ string) (*entity.Identity, error) {
	return &entity.Identity{UID: "uid-" + email, Email: email}, nil
}

func (stubIdentity) UpdateDisplayName(context.Context, string, string) error { return nil }

func (stubIdentity) SignOut(context.Context, string) error { return nil }

// stubVerifier accepts tokens of the form "token-<uid>".
type stubVerifier struct{}

func (stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", apperrors.Unauthorized("invalid token", nil)
	}
	return strings.TrimPrefix(token, "token-"), nil
}

type testServer struct {
	e        *echo.Echo
	store    *memstore.Store
	registry *usecase.SessionRegistry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	deps := usecase.SessionDeps{
		Store:            store,
		Identity:         stubIdentity{},
		Seed:             seed.Default(),
		NotificationTTL:  time.Minute,
		EnableRoleSwitch: true,
		Locale:           "en",
		Collaboration:    usecase.NewCollaborationUseCase(store, textgen.TemplateGenerator{}),
		Marketplace:      usecase.NewMarketplaceUseCase(store, nil),
		Connections:      usecase.NewConnectionUseCase(store, nil),
		Chat:             usecase.NewChatUseCase(store, nil),
	}
	registry := usecase.NewSessionRegistry(deps)
	t.Cleanup(registry.CloseAll)

	wsManager := ws.NewManager(nil)
	sessionMiddleware := middleware.NewSessionMiddleware(registry, stubVerifier{})
	handler.Setup(registry, wsManager.CloseSession)
	handler.SetupHealthHandler(store, registry, "memory")

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, sessionMiddleware, handler.NewWebSocketHandler(wsManager, sessionMiddleware, registry), true)
	return &testServer{e: e, store: store, registry: registry}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, sessionID, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	code, env := ts.do(t, http.MethodPost, "/v1/sessions", "", "", nil)
	require.Equal(t, http.StatusCreated, code)
	var view usecase.ViewModel
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, usecase.StateSignedOut, view.State)
	return view.SessionID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")

	req = httptest.NewRequest(http.MethodGet, "/store-health", nil)
	rec = httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory")
}

func TestSessionHeaderRequired(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, http.MethodGet, "/v1/session", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, env = ts.do(t, http.MethodGet, "/v1/session", "unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestGuestCartFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	code, env := ts.do(t, http.MethodPost, "/v1/cart/items", id, "", map[string]string{"productId": "1"})
	assert.Equal(t, http.StatusUnauthorized, code, "no profile yet")

	code, env = ts.do(t, http.MethodPost, "/v1/auth/guest", id, "", nil)
	require.Equal(t, http.StatusOK, code)
	var guest entity.User
	require.NoError(t, json.Unmarshal(env.Data, &guest))
	assert.Equal(t, "Guest User", guest.Name)

	code, env = ts.do(t, http.MethodPost, "/v1/cart/items", id, "", map[string]interface{}{"productId": "1", "offerPrice": 900})
	require.Equal(t, http.StatusOK, code)
	var cart entity.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 900.0, *cart.Items[0].OfferPrice)

	code, _ = ts.do(t, http.MethodPost, "/v1/cart/favorites/2", id, "", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = ts.do(t, http.MethodPut, "/v1/cart/items/1", id, "", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Empty(t, cart.Items)
	assert.Equal(t, []string{"2"}, cart.Favorites)

	code, _ = ts.do(t, http.MethodPost, "/v1/auth/signout", id, "", nil)
	require.Equal(t, http.StatusOK, code)
	code, env = ts.do(t, http.MethodGet, "/v1/session", id, "", nil)
	require.Equal(t, http.StatusOK, code)
	var view usecase.ViewModel
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Nil(t, view.CurrentUser)
	assert.Empty(t, view.Favorites)
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	code, env := ts.do(t, http.MethodPost, "/v1/bargains", id, "", map[string]interface{}{"productId": "1", "offerPrice": 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = ts.do(t, http.MethodPost, "/v1/collaborations/c1/end", id, "", map[string]interface{}{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = ts.do(t, http.MethodPut, "/v1/connections/r1", id, "", map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Message, "one of")
}

func TestIdentifiedSessionNeedsMatchingToken(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	code, env := ts.do(t, http.MethodPost, "/v1/auth/signin", id, "", map[string]string{"email": "meera@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = ts.do(t, http.MethodPost, "/v1/auth/signin", id, "", map[string]string{"email": "meera@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodGet, "/v1/session", id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "token required once signed in")

	code, _ = ts.do(t, http.MethodGet, "/v1/session", id, "token-someone-else", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ts.do(t, http.MethodGet, "/v1/session", id, "token-uid-meera@example.com", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProfileCompletionAndProject(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)
	token := "token-uid-meera@example.com"

	code, _ := ts.do(t, http.MethodPost, "/v1/auth/signup", id, "", map[string]string{"name": "Meera Joshi", "email": "meera@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, code)
	require.Eventually(t, func() bool {
		s, _ := ts.registry.Get(id)
		return s.State() == usecase.StateReady
	}, 2*time.Second, 5*time.Millisecond)

	code, _ = ts.do(t, http.MethodPut, "/v1/auth/profile", id, token, map[string]string{"role": "artisan", "craft": "Blue Pottery"})
	require.Equal(t, http.StatusOK, code)
	require.Eventually(t, func() bool {
		s, _ := ts.registry.Get(id)
		u := s.CurrentUser()
		return u != nil && u.Role == entity.RoleArtisan
	}, 2*time.Second, 5*time.Millisecond)

	code, env := ts.do(t, http.MethodPost, "/v1/projects", id, token, map[string]interface{}{
		"title":        "Catalogue Shoot",
		"description":  "Photograph the spring collection",
		"skillsNeeded": []string{"Photography"},
	})
	require.Equal(t, http.StatusCreated, code)
	var project entity.Project
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, entity.ProjectOpen, project.Status)
	assert.Equal(t, "Meera Joshi", project.PostedBy)

	docs, err := ts.store.Find(context.Background(), repository.NewQuery(repository.CollectionProjects))
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	code, env = ts.do(t, http.MethodGet, "/v1/certificates/missing", id, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNotificationsAndLocale(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)
	s, ok := ts.registry.Get(id)
	require.True(t, ok)
	nid := s.Notify("Welcome!", entity.NotificationInfo, nil)

	code, env := ts.do(t, http.MethodGet, "/v1/session/notifications", id, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Welcome!")

	for i := 0; i < 2; i++ {
		code, _ = ts.do(t, http.MethodDelete, "/v1/session/notifications/"+nid, id, "", nil)
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Empty(t, s.Notifications())

	code, _ = ts.do(t, http.MethodPut, "/v1/session/locale", id, "", map[string]string{"locale": "ta"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ta", s.Locale())
}

func TestSwitchRoleAndClose(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	code, _ := ts.do(t, http.MethodPost, "/v1/auth/guest", id, "", nil)
	require.Equal(t, http.StatusOK, code)

	code, env := ts.do(t, http.MethodPost, "/_dev/switch-role", id, "", map[string]string{"role": "customer"})
	require.Equal(t, http.StatusOK, code)
	var u entity.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, entity.RoleCustomer, u.Role)

	code, _ = ts.do(t, http.MethodDelete, "/v1/session", id, "", nil)
	require.Equal(t, http.StatusOK, code)
	_, ok := ts.registry.Get(id)
	assert.False(t, ok)
}
