package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/tduarte/shorts-server/internal/api/rest"
	"github.com/tduarte/shorts-server/internal/cache"
	"github.com/tduarte/shorts-server/internal/config"
	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
	"github.com/tduarte/shorts-server/internal/repository/pebble"
	"github.com/tduarte/shorts-server/internal/repository/postgres"
	"github.com/tduarte/shorts-server/internal/server"
	"github.com/tduarte/shorts-server/internal/service"
	"github.com/tduarte/shorts-server/internal/storage/fs"
	storage "github.com/tduarte/shorts-server/internal/storage/minio"
	"github.com/tduarte/shorts-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	backend, closeBackend, err := newBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize backend", "error", err)
	}
	defer closeBackend()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	defer redisClient.Close()
	aside := cache.NewAside(cache.NewRedis(redisClient, cfg.Cache.Timeout), cfg.Cache.TTL, logger)

	blobStorage, err := newBlobStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize blob storage", "error", err)
	}

	secret := cfg.Token.Secret
	if secret == "" {
		logger.Warn("TOKEN_SECRET not set, using development secret")
		secret = token.DevSecret
	}
	codec := token.NewCodec(secret)
	session := token.NewJWT(cfg.JWT.Secret)

	cascade := service.NewCascade(backend, aside, blobStorage, logger)
	users := service.NewUsers(backend, aside, session, cascade, logger)
	shorts := service.NewShorts(backend, aside, cascade, codec, cfg.HTTP.BaseURL, logger)
	blobs := service.NewBlobs(blobStorage, codec, logger)

	router := rest.NewRouter(
		rest.NewUsersHandler(users, session),
		rest.NewShortsHandler(shorts),
		rest.NewBlobsHandler(blobs),
		logger,
	)
	httpServer := rest.NewServer(fmt.Sprintf(":%s", cfg.HTTP.Port), router, logger)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion(logger)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newBackend(ctx context.Context, cfg *config.Config) (model.Backend, func(), error) {
	switch cfg.Backend.Kind {
	case "postgres":
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewBackend(conn), func() { _ = conn.Close() }, nil
	case "pebble":
		db, err := pebble.Open(cfg.Backend.PebblePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
	}
}

func newBlobStorage(ctx context.Context, cfg *config.Config) (model.BlobStorage, error) {
	switch cfg.Storage.Kind {
	case "minio":
		minioClient, err := minio.New(cfg.Storage.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.Minio.AccessKey, cfg.Storage.Minio.SecretKey, ""),
			Secure: cfg.Storage.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return storage.NewClient(ctx, minioClient, cfg.Storage.Minio.Bucket)
	case "fs":
		return fs.New(cfg.Storage.FSRoot)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Storage.Kind)
	}
}

func logAppVersion(l *logger.Logger) {
	l.Info("build info",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit,
	)
}
