package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/internal/agentconfig/repositoryimpl"
	"github.com/agentportal/agentportal/internal/config"
	"github.com/agentportal/agentportal/internal/foundry"
	"github.com/agentportal/agentportal/internal/portal"
	"github.com/agentportal/agentportal/pkg/clog"
	"github.com/agentportal/agentportal/pkg/storage"
	"github.com/agentportal/agentportal/pkg/watcher"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup configuration repository
	storageEnv := config.StorageEnvFromEnv(env)
	var repo agentconfig.Repository
	var configDir string
	switch storageEnv.Type {
	case "s3":
		store, err := storage.NewS3Storage(context.Background(), storageEnv.S3Bucket, storageEnv.S3Prefix, storageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
		repo = repositoryimpl.NewYAMLRepository(store)
	case "local":
		store, err := storage.NewLocalStorage(storageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
		repo = repositoryimpl.NewYAMLRepository(store)
		configDir = filepath.Join(store.BasePath(), repositoryimpl.AgentsPrefix)
	default:
		repo = repositoryimpl.NewMemoryRepository()
	}
	configService := agentconfig.NewService(repo)

	// Setup remote gateway
	foundryEnv := config.FoundryEnvFromEnv(env)
	cred, err := foundry.NewCredential(foundryEnv.Credential)
	if err != nil {
		slog.Error("failed to create credential", "error", err)
		os.Exit(1)
	}
	gateway := foundry.NewGateway(foundryEnv.ProjectEndpoint, foundryEnv.ModelDeployment, foundryEnv.TokenScope, cred)

	srv := portal.NewServer(env, configService, gateway)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var wg conc.WaitGroup
	defer wg.Wait()

	if configDir != "" {
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			slog.Error("failed to create config directory", "dir", configDir, "error", err)
			os.Exit(1)
		}
		w, err := watcher.New(configDir, func(ctx context.Context) {
			slog.InfoContext(ctx, "agent configurations changed on disk", "dir", configDir)
		})
		if err != nil {
			slog.Error("failed to create config watcher", "error", err)
			os.Exit(1)
		}
		wg.Go(func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("config watcher stopped", "error", err)
			}
		})
	}

	wg.Go(func() {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active chat streams time to finish after their contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
