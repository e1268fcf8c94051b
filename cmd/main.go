package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/franciscosanchezn/stellar-burgers-api/docs" // Import generated docs
	"github.com/franciscosanchezn/stellar-burgers-api/internal/cache"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/catalog"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/config"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/controllers"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/database"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/feed"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/services"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/session"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/upstream"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"
)

// backend is what a backend mode contributes to the wiring
type backend struct {
	source        catalog.Source
	submitter     orders.Submitter
	finder        orders.Finder
	lister        orders.Lister
	publicDialer  feed.Dialer
	profileDialer func(token string) feed.Dialer
	advancer      controllers.StatusAdvancer
}

var (
	configuration *config.Config
	parser        *session.TokenParser
)

// @title Stellar Burgers API
// @version 1.0
// @description Burger constructor, order submission and live order feeds for Stellar Burgers
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	parser = setupTokenParser(configuration)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the backend for the configured mode
	var b backend
	switch configuration.BackendMode {
	case config.BackendRemote:
		b = setupRemoteBackend(configuration)
	default:
		b = setupLocalBackend(configuration)
	}

	cat := catalog.New(b.source)
	go func() {
		if err := cat.Load(ctx); err != nil {
			log.WithError(err).Warn("Initial catalog load failed, it will be retried on demand")
		}
	}()

	public := feed.NewSynchronizer("public", b.publicDialer)
	if err := public.Connect(ctx); err != nil {
		log.WithError(err).Warn("Could not connect the public feed")
	}
	defer public.Disconnect()

	registry := workspace.NewRegistry(workspace.Dependencies{
		Submitter:     b.submitter,
		Finder:        setupFinder(ctx, b.finder, public),
		Lister:        b.lister,
		ProfileDialer: b.profileDialer,
	}, workspace.WithMaxWorkspaces(configuration.MaxWorkspaces))
	registry.Start(ctx)
	defer registry.Stop()

	policy, err := feed.PolicyByName(configuration.FeedBoardPolicy)
	checkPanicErr(err)

	handlers := controllers.Handlers{
		Catalog:       controllers.NewCatalogController(cat),
		Constructor:   controllers.NewConstructorController(registry, cat),
		Orders:        controllers.NewOrderController(registry, cat, b.advancer),
		Feed:          controllers.NewFeedController(public, registry, policy, configuration.FeedBoardLimit),
		Parser:        parser,
		SecureCookies: configuration.IsProduction(),
	}

	// Initialize Gin router
	var router *gin.Engine = setupRouter(handlers)

	// Start the server
	log.Infof("Starting server on %s:%d in %s mode", configuration.Host, configuration.Port, configuration.BackendMode)
	checkPanicErr(router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	database.SetLogLevel(log.GetLevel())
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupTokenParser verifies tokens with JWT_SECRET. Only the remote backend
// may run without one, since the upstream API checks every token it is sent.
func setupTokenParser(conf *config.Config) *session.TokenParser {
	if conf.JWTSecret == "" && conf.BackendMode == config.BackendRemote {
		log.Warn("JWT_SECRET is not set, bearer tokens are decoded and left to the upstream API to verify")
		return session.NewUpstreamTokenParser()
	}
	return session.NewTokenParser(conf.JWTSecret)
}

// setupLocalBackend opens the database, migrates and seeds it, and serves
// everything from the gorm kitchen
func setupLocalBackend(conf *config.Config) backend {
	db, err := database.InitDatabase(conf.Database)
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	checkPanicErr(database.Seed(db))

	var kitchen services.KitchenService
	hub := feed.NewHub(func(ctx context.Context, owner string) (models.FeedSnapshot, error) {
		return kitchen.Snapshot(ctx, owner)
	})
	kitchen = services.NewKitchenService(db, parser.Owner, hub, conf.FeedMaxOrders)

	return backend{
		source:       kitchen,
		submitter:    kitchen,
		finder:       kitchen,
		lister:       kitchen,
		publicDialer: hub.Dialer(""),
		profileDialer: func(token string) feed.Dialer {
			owner, err := parser.Owner(token)
			if err != nil {
				return feed.DialerFunc(func(context.Context) (feed.Stream, error) {
					return nil, err
				})
			}
			return hub.Dialer(owner)
		},
		advancer: kitchen,
	}
}

// setupRemoteBackend proxies the hosted REST API and its websocket feeds
func setupRemoteBackend(conf *config.Config) backend {
	log.Infof("Using upstream API at %s", conf.UpstreamURL)
	client := upstream.NewClient(conf.UpstreamURL, upstream.WithTimeout(conf.UpstreamTimeout))
	feeds := upstream.NewFeedDialer(conf.UpstreamWSURL)

	return backend{
		source:        client,
		submitter:     client,
		finder:        client,
		lister:        client,
		publicDialer:  feeds.Public(),
		profileDialer: feeds.Profile,
	}
}

// setupFinder answers order lookups from the public feed first and caches
// finished orders in Redis when REDIS_ADDR is set
func setupFinder(ctx context.Context, base orders.Finder, public *feed.Synchronizer) orders.Finder {
	finder := orders.WithIndexes(base, public)
	if configuration.RedisAddr == "" {
		return finder
	}

	redisCache := cache.NewRedisCache(configuration.RedisAddr, "stellar-burgers")
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.WithError(err).Warnf("Redis at %s is unreachable, lookups fall through until it recovers", configuration.RedisAddr)
	}
	return orders.WithCache(finder, redisCache, configuration.OrderCacheTTL)
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(handlers controllers.Handlers) *gin.Engine {
	// Initialize Gin router
	router := gin.Default()

	// Define routes
	setupRoutes(router, handlers)

	return router
}

// generateTestTokenHandler issues a signed token for local testing.
// Only mounted outside production.
func generateTestTokenHandler(c *gin.Context) {
	user := models.User{
		ID:   c.DefaultQuery("user", "test-user-123"),
		Role: c.DefaultQuery("role", "user"),
	}
	if user.Role != "user" && user.Role != "admin" {
		c.JSON(http.StatusBadRequest, models.APIError{
			Code:    "INVALID_ROLE",
			Message: "role must be user or admin",
		})
		return
	}

	tokenString, err := parser.Issue(user, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      tokenString,
		"type":       "Bearer",
		"expires_in": 86400, // 24 hours in seconds
	})
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, handlers controllers.Handlers) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Test token generation endpoint
	if !configuration.IsProduction() && parser.Verifies() {
		router.GET("/test-token", generateTestTokenHandler)
	}

	controllers.RegisterRoutes(router, handlers)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "stellar-burgers-api",
	})
}
