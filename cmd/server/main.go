package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-progress/internal/auth"
	"listing-progress/internal/config"
	"listing-progress/internal/domain"
	apphttp "listing-progress/internal/http"
	"listing-progress/internal/repository"
	"listing-progress/internal/repository/memory"
	"listing-progress/internal/repository/sqlite"
	"listing-progress/internal/service"
	"listing-progress/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressRepo, propertyRepo, closeDB, err := buildRepositories(cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer closeDB()

	if err := progressRepo.Init(ctx); err != nil {
		logger.Fatalf("init progress repository: %v", err)
	}
	if err := propertyRepo.Init(ctx); err != nil {
		logger.Fatalf("init property repository: %v", err)
	}

	progressService := service.NewProgressService(progressRepo, logger)
	propertyService := service.NewPropertyService(propertyRepo)

	if err := loadCatalog(ctx, cfg, propertyService, logger); err != nil {
		logger.Fatalf("load property catalog: %v", err)
	}

	provider, err := buildIdentityProvider(cfg)
	if err != nil {
		logger.Fatalf("setup identity provider: %v", err)
	}
	logger.Infof("identity provider: %s", cfg.Auth.Mode)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		progressService,
		propertyService,
		auth.NewResolver(provider),
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepositories(cfg config.Config) (repository.ProgressRepository, repository.PropertyRepository, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		return memory.NewProgressRepository(), memory.NewPropertyRepository(nil), func() {}, nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		_ = db.Close()
	}
	return sqlite.NewProgressRepository(db), sqlite.NewPropertyRepository(db), closeDB, nil
}

func buildIdentityProvider(cfg config.Config) (auth.Provider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeStatic:
		return auth.NewStaticProvider(cfg.Auth.StaticToken, auth.Identity{
			UserID: cfg.Auth.StaticUserID,
			Email:  cfg.Auth.StaticEmail,
		})
	default:
		return auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}
}

// loadCatalog replaces the stored catalog with the remote one when a bucket is configured,
// otherwise seeds the defaults into an empty catalog.
func loadCatalog(ctx context.Context, cfg config.Config, properties service.PropertyService, logger *logrus.Logger) error {
	if cfg.Catalog.Bucket == "" {
		seeded, err := properties.SeedIfEmpty(ctx, domain.DefaultProperties())
		if err != nil {
			return err
		}
		if seeded {
			logger.Info("seeded default property catalog")
		}
		return nil
	}

	source, err := buildCatalogSource(ctx, cfg)
	if err != nil {
		return err
	}
	list, err := source.LoadProperties(ctx)
	if err != nil {
		return err
	}
	if err := properties.ReplaceCatalog(ctx, list); err != nil {
		return err
	}
	logger.Infof("loaded %d properties from s3://%s/%s", len(list), cfg.Catalog.Bucket, cfg.Catalog.Key)
	return nil
}

func buildCatalogSource(ctx context.Context, cfg config.Config) (storage.CatalogSource, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Catalog.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Catalog.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Catalog.Endpoint)
			o.UsePathStyle = true
		}
	})
	return storage.NewS3Catalog(client, storage.CatalogLocation{
		Bucket: cfg.Catalog.Bucket,
		Key:    cfg.Catalog.Key,
	}), nil
}
