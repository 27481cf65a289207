// @title           Shoot Workflow Backend API
// @version         1.0.0
// @description     Backend API for real-estate photo shoots: booking, remote folder provisioning, file uploads and the ToDo to Completed to verified delivery workflow.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"shoot-workflow-backend/docs"
	"shoot-workflow-backend/internal/artifacts"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/cache"
	"shoot-workflow-backend/internal/config"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/dropbox"
	"shoot-workflow-backend/internal/handlers"
	"shoot-workflow-backend/internal/metrics"
	"shoot-workflow-backend/internal/middleware"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/services"
	"shoot-workflow-backend/internal/supabase"
	"shoot-workflow-backend/internal/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()

	store, pinger := openStore(ctx, cfg)
	defer store.Close()

	var tokenCache dropbox.TokenCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Warning: Redis unavailable, tokens will not be shared: %v", err)
		} else {
			defer redisCache.Close()
			tokenCache = redisCache
		}
	}

	blobs, oauth, err := openBlobStore(cfg, store, tokenCache)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	artifactStore, err := openArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	m := metrics.New()

	// Realtime events go through Supabase when it is configured
	var notifier workflow.Notifier = workflow.NopNotifier{}
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize Supabase client, realtime events disabled: %v", err)
	} else if supabaseClient != nil {
		notifier = supabase.NewRealtimeClient(supabaseClient.Supabase, cfg.RealtimeTable)
	}

	folders := workflow.NewProvisioner(blobs, cfg.FolderRoot, cfg.BlobTimeout, m)
	lifecycle := workflow.NewLifecycle(workflow.LifecycleConfig{
		Store:       store,
		Blobs:       blobs,
		Provisioner: folders,
		Artifacts:   artifactStore,
		Publisher:   workflow.NewPublisher(notifier, m),
		Metrics:     m,
		BlobTimeout: cfg.BlobTimeout,
	})
	workflowService := services.NewWorkflowService(store, folders, lifecycle)

	shootsHandler := handlers.NewShootsHandler(workflowService)
	filesHandler := handlers.NewFilesHandler(workflowService)
	dropboxHandler := handlers.NewDropboxHandler(oauth, store)

	// Setup router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(m.GinMiddleware())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check and metrics (no auth)
	router.GET("/health", handlers.HealthHandler(pinger))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	admin := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	// Shoots
	api.POST("/shoots", admin, shootsHandler.CreateShoot)
	api.GET("/shoots", shootsHandler.ListShoots)
	api.GET("/shoots/:shoot_id", shootsHandler.GetShoot)
	api.PATCH("/shoots/:shoot_id/notes", shootsHandler.UpdateNotes)
	api.GET("/shoots/:shoot_id/workflow", shootsHandler.GetWorkflowStatus)
	api.POST("/shoots/:shoot_id/folders", admin, shootsHandler.ProvisionFolders)
	api.POST("/shoots/:shoot_id/finalize", admin, shootsHandler.FinalizeShoot)

	// Files
	api.GET("/shoots/:shoot_id/files", filesHandler.ListFiles)
	api.POST("/shoots/:shoot_id/files", filesHandler.UploadFiles)
	api.POST("/shoots/:shoot_id/files/copy", filesHandler.CopyFiles)
	api.POST("/shoots/:shoot_id/files/:file_id/promote", filesHandler.PromoteFile)
	api.POST("/shoots/:shoot_id/files/:file_id/verify", admin, filesHandler.VerifyFile)
	api.POST("/shoots/:shoot_id/files/:file_id/archive", admin, filesHandler.ArchiveFile)

	// Dropbox account linking
	api.GET("/dropbox/connect", admin, dropboxHandler.Connect)
	api.GET("/dropbox/token", admin, dropboxHandler.TokenStatus)
	api.POST("/dropbox/token", admin, dropboxHandler.ExchangeCode)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (blob provider: %s, artifacts: %s)", cfg.Port, blobs.Name(), artifactStore.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

// openStore connects to Postgres and runs migrations. Without DATABASE_URL the
// server falls back to an in-memory store that is lost on restart.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, handlers.Pinger) {
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Using in-memory store; data will not survive a restart.")
		return database.NewMemoryStore(), nil
	}

	dbClient, err := database.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}

	if err := database.NewMigrator(dbClient.DB()).Run(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")

	return dbClient, dbClient
}

// openBlobStore returns the configured remote store. The OAuth provider is
// nil unless Dropbox tokens are refreshed rather than static.
func openBlobStore(cfg *config.Config, tokens dropbox.TokenStore, tokenCache dropbox.TokenCache) (blobstore.Store, *dropbox.OAuthTokenProvider, error) {
	switch cfg.BlobProvider {
	case config.BlobProviderSupabase:
		storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		return storageClient, nil, err
	default:
		if cfg.DropboxRefreshToken == "" {
			provider := dropbox.NewStaticTokenProvider(cfg.DropboxAccessToken)
			return dropbox.NewClient(cfg.DropboxAPIBaseURL, cfg.DropboxContentURL, provider), nil, nil
		}
		provider := dropbox.NewOAuthTokenProvider(dropbox.OAuthConfig{
			AppKey:       cfg.DropboxAppKey,
			AppSecret:    cfg.DropboxAppSecret,
			TokenURL:     cfg.DropboxOAuthURL,
			RedirectURI:  cfg.DropboxRedirectURI,
			RefreshToken: cfg.DropboxRefreshToken,
		}, tokens, tokenCache)
		return dropbox.NewClient(cfg.DropboxAPIBaseURL, cfg.DropboxContentURL, provider), provider, nil
	}
}

func openArtifactStore(ctx context.Context, cfg *config.Config) (artifacts.Store, error) {
	if cfg.ArtifactBackend == config.ArtifactBackendS3 {
		return artifacts.NewS3Store(ctx, artifacts.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return artifacts.NewLocalStore(cfg.ArtifactDir)
}
