package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/config"
	"askme-quiz-service/internal/domain"
	"askme-quiz-service/internal/infra/llm"
	"askme-quiz-service/internal/infra/memory"
	pgstore "askme-quiz-service/internal/infra/postgres"
	redisstore "askme-quiz-service/internal/infra/redis"
	"askme-quiz-service/internal/infra/sqlite"
	transport "askme-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	if cfg.LLM.APIKey == "" {
		log.Printf("%s is not set; quiz generation will fail until it is", config.APIKeyEnv)
	}
	gateway := llm.NewGateway(llm.Options{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: config.Float(cfg.LLM.Temperature, llm.DefaultTemperature),
		Timeout:     config.TTLDuration(cfg.LLM.Timeout, llm.DefaultTimeout),
		Strict:      cfg.LLM.Strict,
	})

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	themes, closeThemes, err := buildThemeRepository(ctx, cfg, redisClient, redisTTL)
	if err != nil {
		return err
	}
	defer closeThemes()

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	router := transport.NewRouter(
		app.NewQuizService(store, gateway),
		app.NewThemeService(themes),
		transport.RouterOptions{
			DefaultMode:    domain.ParseMode(cfg.Quiz.Mode),
			AllowedOrigins: cfg.CORS.Origins,
		},
	)

	// No WriteTimeout: generation replies can take most of a minute and websockets are long-lived.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting askme quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildThemeRepository picks the durable preference store (Postgres, then SQLite, then
// process memory) and fronts it with Redis or an in-process cache.
func buildThemeRepository(ctx context.Context, cfg config.Config, redisClient *redis.Client, ttl time.Duration) (app.ThemeRepository, func(), error) {
	var durable app.ThemeRepository
	closeFn := func() {}

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		durable = pgstore.NewThemeStore(pool)
		closeFn = pool.Close
		log.Printf("theme preferences stored in postgres")
	case cfg.SQLite.Path != "":
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		durable = db
		closeFn = func() { db.Close() }
		log.Printf("theme preferences stored in sqlite at %s", cfg.SQLite.Path)
	}

	switch {
	case redisClient != nil:
		return redisstore.NewThemeStore(redisClient, durable, ttl), closeFn, nil
	case durable != nil:
		return memory.NewThemeCache(durable, ttl), closeFn, nil
	default:
		log.Printf("theme preferences kept in memory only")
		return memory.NewThemeStore(), closeFn, nil
	}
}
