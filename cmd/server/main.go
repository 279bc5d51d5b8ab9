package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogapi/internal/config"
	apphttp "blogapi/internal/http"
	"blogapi/internal/repository/record"
	"blogapi/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postBackend, userBackend, cleanup, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup store backend: %v", err)
	}
	defer cleanup()

	postRepo := record.NewPostRepository(postBackend)
	userRepo := record.NewUserRepository(userBackend)

	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	authService := service.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
	)
	postService := service.NewPostService(postRepo)

	limiter := apphttp.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, postService, limiter)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
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

// buildBackends constructs the snapshot backends for the post and user
// collections according to store.backend.
func buildBackends(ctx context.Context, cfg config.Config, logger *logrus.Logger) (record.Backend, record.Backend, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case "file":
		posts, err := record.NewFileBackend(cfg.Store.PostsPath)
		if err != nil {
			return nil, nil, noop, err
		}
		users, err := record.NewFileBackend(cfg.Store.UsersPath)
		if err != nil {
			return nil, nil, noop, err
		}
		return posts, users, noop, nil

	case "memory":
		logger.Warn("memory backend selected; records are lost on restart")
		return record.NewMemoryBackend(), record.NewMemoryBackend(), noop, nil

	case "sqlite":
		db, err := record.OpenSQLite(cfg.Store.PostsPath)
		if err != nil {
			return nil, nil, noop, err
		}
		posts, err := record.NewSQLiteBackend(db, "posts")
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		users, err := record.NewSQLiteBackend(db, "users")
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return posts, users, closeDB(db, logger), nil

	case "s3":
		client, err := buildS3Client(ctx, cfg, logger)
		if err != nil {
			return nil, nil, noop, err
		}
		posts, err := record.NewS3Backend(client, cfg.Storage.Bucket, cfg.Store.PostsPath)
		if err != nil {
			return nil, nil, noop, err
		}
		users, err := record.NewS3Backend(client, cfg.Storage.Bucket, cfg.Store.UsersPath)
		if err != nil {
			return nil, nil, noop, err
		}
		return posts, users, noop, nil
	}

	return nil, nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func buildS3Client(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*s3.Client, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return client, nil
}

func closeDB(db *sql.DB, logger *logrus.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warnf("close sqlite db: %v", err)
		}
	}
}
