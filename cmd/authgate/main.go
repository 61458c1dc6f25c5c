package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authgate/core"
	"authgate/core/providers"
	"authgate/logx"
	"authgate/storage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port string `yaml:"port"`

	JWT struct {
		Secret        string `yaml:"secret"`
		ExpiryMinutes int    `yaml:"expiry_minutes"`
	} `yaml:"jwt"`

	HTTPTimeout       string `yaml:"http_timeout"` // time.ParseDuration format, e.g. "10s"
	PostLoginRedirect string `yaml:"post_login_redirect"`

	Github *providers.GithubConfig `yaml:"github,omitempty"`
	Google *providers.GoogleConfig `yaml:"google,omitempty"`

	DB  DBConfig  `yaml:"db"`
	Log LogConfig `yaml:"log"`
}

type DBConfig struct {
	Type        string `yaml:"type"` // sqlite, postgres, mock
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type LogConfig struct {
	Env    string `yaml:"env"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func main() {
	_ = godotenv.Load()

	configPath := getEnv("CONFIG_PATH", "config.yaml")
	appConfig := loadConfigFromYAML(configPath)
	applyEnvOverrides(appConfig)

	logger := logx.New(logx.Config{
		Service: "authgate",
		Env:     appConfig.Log.Env,
		Level:   appConfig.Log.Level,
		Format:  appConfig.Log.Format,
	})

	coreConfig := &core.Config{
		JWTSecret:          appConfig.JWT.Secret,
		TokenExpiryMinutes: appConfig.JWT.ExpiryMinutes,
		PostLoginRedirect:  appConfig.PostLoginRedirect,
	}
	if appConfig.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(appConfig.HTTPTimeout)
		if err != nil {
			logger.Error("invalid http_timeout", "value", appConfig.HTTPTimeout, "error", err)
			os.Exit(1)
		}
		coreConfig.HTTPTimeout = timeout
	}
	if coreConfig.JWTSecret == "" {
		logger.Error("jwt.secret is required")
		os.Exit(1)
	}
	if coreConfig.TokenExpiryMinutes <= 0 {
		coreConfig.TokenExpiryMinutes = 60
	}
	if coreConfig.PostLoginRedirect == "" {
		coreConfig.PostLoginRedirect = "http://localhost:3000"
	}

	repo := initRepository(logger, appConfig.DB)
	defer repo.Close()

	registry := initProviders(logger, appConfig, coreConfig.Timeout())

	tokens := core.NewTokenService(coreConfig)
	authService := core.NewAuthService(registry, tokens, repo, logger)
	server := core.NewServer(authService, coreConfig)

	port := appConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: server.Router(logx.HTTPMiddleware(logger)),
	}

	logger.Info("starting authgate", "port", port, "providers", registry.Keys())

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			_ = srv.Close()
		}
	}

	logger.Info("authgate stopped")
}

func loadConfigFromYAML(path string) *AppConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read config file", "path", path, "error", err)
		os.Exit(1)
	}

	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Error("failed to parse config file", "path", path, "error", err)
		os.Exit(1)
	}

	return &config
}

// applyEnvOverrides lets secrets come from the environment instead of the
// config file.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if cfg.Github != nil {
		if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
			cfg.Github.ClientSecret = v
		}
	}
	if cfg.Google != nil {
		if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
			cfg.Google.ClientSecret = v
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.DB.PostgresDSN = v
	}
}

func initRepository(logger *slog.Logger, dbConfig DBConfig) core.UserRepository {
	switch dbConfig.Type {
	case "sqlite", "":
		path := dbConfig.SQLitePath
		if path == "" {
			path = "authgate.db"
		}
		repo, err := storage.NewSQLiteRepository(path)
		if err != nil {
			logger.Error("failed to initialize sqlite repository", "error", err)
			os.Exit(1)
		}
		logger.Info("using sqlite database", "path", path)
		return repo

	case "postgres":
		repo, err := storage.NewPostgresRepository(context.Background(), dbConfig.PostgresDSN)
		if err != nil {
			logger.Error("failed to initialize postgres repository", "error", err)
			os.Exit(1)
		}
		logger.Info("using postgres database")
		return repo

	case "mock":
		logger.Info("using mock repository (in-memory)")
		return storage.NewMockRepository()

	default:
		logger.Error("unsupported db type", "type", dbConfig.Type)
		os.Exit(1)
		return nil
	}
}

// initProviders builds the registry. A present but incomplete provider block
// is fatal here, at wiring time, rather than on the first request.
func initProviders(logger *slog.Logger, cfg *AppConfig, timeout time.Duration) *core.Registry {
	var adapters []core.OAuthProvider

	if cfg.Github != nil {
		github, err := providers.NewGithubProvider(cfg.Github, timeout)
		if err != nil {
			logger.Error("failed to initialize github provider", "error", err)
			os.Exit(1)
		}
		adapters = append(adapters, github)
		logger.Info("github provider initialized")
	}

	if cfg.Google != nil {
		google, err := providers.NewGoogleProvider(cfg.Google, timeout)
		if err != nil {
			logger.Error("failed to initialize google provider", "error", err)
			os.Exit(1)
		}
		adapters = append(adapters, google)
		logger.Info("google provider initialized")
	}

	return core.NewRegistry(adapters...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
