package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	pgstore "askme-quiz-service/internal/infra/postgres"
	pgmigrations "askme-quiz-service/internal/infra/postgres/migrations"
	infraredis "askme-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestThemePersistsThroughRedisAndPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	durable := pgstore.NewThemeStore(pool)
	service := app.NewThemeService(infraredis.NewThemeStore(redisClient, durable, 5*time.Minute))

	if got := service.Get(ctx, "client-1"); got != domain.ThemeLight {
		t.Fatalf("expected light default, got %s", got)
	}
	if err := service.Set(ctx, "client-1", domain.ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}

	// A cold cache must still find the durable value.
	if err := redisClient.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	if got := service.Get(ctx, "client-1"); got != domain.ThemeDark {
		t.Fatalf("expected dark from postgres, got %s", got)
	}
	theme, ok, err := durable.LoadTheme(ctx, "client-1")
	if err != nil || !ok || theme != domain.ThemeDark {
		t.Fatalf("expected dark row, got %s ok=%v err=%v", theme, ok, err)
	}
}

func TestTabSessionsTrackedInRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()
	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	store := infraredis.NewSessionStore(redisClient, time.Minute)
	service := app.NewQuizService(store, staticGenerator{})

	service.Open("tab-1", domain.ModeList)
	if err := service.Generate(ctx, "tab-1", "Volcanoes"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	view, err := service.Answer("tab-1", 0, "right")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if view.Score != 1 || view.State != domain.StateReady {
		t.Fatalf("unexpected view %+v", view)
	}
	if n, _ := redisClient.Exists(ctx, "askme:tab:tab-1").Result(); n != 1 {
		t.Fatalf("expected tab liveness key")
	}

	service.Close("tab-1")
	if _, err := service.Snapshot("tab-1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected closed tab to be gone, got %v", err)
	}
	if n, _ := redisClient.Exists(ctx, "askme:tab:tab-1").Result(); n != 0 {
		t.Fatalf("expected liveness key removed")
	}
}

type staticGenerator struct{}

func (staticGenerator) Generate(_ context.Context, topic string) ([]domain.QuizQuestion, error) {
	questions := make([]domain.QuizQuestion, domain.QuestionsPerQuiz)
	for i := range questions {
		questions[i] = domain.QuizQuestion{
			Question: fmt.Sprintf("%s question %d", topic, i+1),
			Options:  []string{"right", "wrong", "also wrong", "nope"},
			Answer:   "right",
		}
	}
	return questions, nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "askme", "POSTGRES_PASSWORD": "askmepass", "POSTGRES_DB": "askme"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://askme:askmepass@%s:%s/askme?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
