package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"artisanx/internal/adapter/api"
	"artisanx/internal/adapter/api/handler"
	apimiddleware "artisanx/internal/adapter/api/middleware"
	"artisanx/internal/adapter/api/router"
	"artisanx/internal/adapter/repository"
	domainrepo "artisanx/internal/domain/repository"
	"artisanx/internal/infrastructure/cache"
	"artisanx/internal/infrastructure/firebase"
	"artisanx/internal/infrastructure/memstore"
	"artisanx/internal/infrastructure/ratelimit"
	"artisanx/internal/infrastructure/seed"
	"artisanx/internal/infrastructure/textgen"
	"artisanx/internal/infrastructure/websocket"
	"artisanx/internal/usecase"
	"artisanx/pkg/config"
	"artisanx/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_ = logger.Init("production")
		logger.Fatal("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.Environment); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := credentials(cfg)

	var authClient *auth.Client
	var store domainrepo.DocumentStore
	if opt != nil {
		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}
		authClient, err = firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth: %v", err)
		}
	}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Info("Using the in-memory document store")
		store = memstore.New()
	default:
		if opt == nil {
			logger.Fatal("Firestore needs FIREBASE_CREDENTIALS_JSON or FIREBASE_CREDENTIALS_FILE")
		}
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			logger.Fatal("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		store = repository.NewFirestoreDocumentStore(firestoreClient)
	}

	seedData := seed.Default()
	if cfg.SeedOnStart {
		if _, err := seed.Populate(ctx, store, seedData); err != nil {
			logger.Error("Error seeding database: %v", err)
		}
	}

	var carts domainrepo.CartRepository
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		carts = cache.NewCartRepository(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, carts are kept per session only")
	}

	identity := firebase.NewAuthClient(authClient, cfg.FirebaseAPIKey)
	var verifier apimiddleware.TokenVerifier
	if authClient != nil {
		verifier = identity
	} else {
		logger.Warn("Firebase Admin SDK not configured, session tokens are not verified")
	}

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine(30*time.Minute, ctx.Done())

	var registry *usecase.SessionRegistry
	wsManager := websocket.NewManager(func(id string) (websocket.SessionHandle, bool) {
		s, ok := registry.Get(id)
		if !ok {
			return nil, false
		}
		return s, true
	})

	registry = usecase.NewSessionRegistry(usecase.SessionDeps{
		Store:            store,
		Identity:         identity,
		Carts:            carts,
		Publisher:        wsManager,
		Seed:             seedData,
		NotificationTTL:  cfg.NotificationTTL,
		EnableRoleSwitch: cfg.EnableRoleSwitch,
		Locale:           cfg.DefaultLocale,
		Collaboration:    usecase.NewCollaborationUseCase(store, textgen.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)),
		Marketplace:      usecase.NewMarketplaceUseCase(store, limiter),
		Connections:      usecase.NewConnectionUseCase(store, limiter),
		Chat:             usecase.NewChatUseCase(store, limiter),
	})
	defer registry.CloseAll()
	registry.StartReaper(time.Minute, cfg.SessionIdleTTL, ctx.Done(), wsManager.CloseSession)

	handler.Setup(registry, wsManager.CloseSession)
	handler.SetupHealthHandler(store, registry, cfg.StoreDriver)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, apimiddleware.SessionHeader},
	}))

	e.Validator = api.NewValidator()

	sessionMiddleware := apimiddleware.NewSessionMiddleware(registry, verifier)
	wsHandler := handler.NewWebSocketHandler(wsManager, sessionMiddleware, registry)
	router.Setup(e, sessionMiddleware, wsHandler, cfg.EnableRoleSwitch)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
}

// credentials returns the service account option, or nil when none is
// configured.
func credentials(cfg *config.Config) option.ClientOption {
	if cfg.CredentialsJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))
	}
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			logger.Fatal("Service account file does not exist: %s", cfg.CredentialsFile)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.CredentialsFile)
		return option.WithCredentialsFile(cfg.CredentialsFile)
	}
	return nil
}
