package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"quizzy-service/internal/app"
	pgstore "quizzy-service/internal/infra/postgres"
	pgmigrations "quizzy-service/internal/infra/postgres/migrations"
	rediscache "quizzy-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestGradeSubmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	questions := rediscache.NewAnswerKeyCache(redisClient, pgstore.NewQuestionRepo(pool), 5*time.Minute)
	attempts := pgstore.NewAttemptRepo(pool)
	service := app.NewQuizService(questions, attempts)

	sample, err := service.SampleQuestions(ctx)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != 5 {
		t.Fatalf("expected sample of 5, got %d", len(sample))
	}

	timeTaken := 77
	result, err := service.GradeSubmission(ctx, "Alice", map[string]string{
		"1": "A", "2": "B", "3": "C", "4": "D", "5": "A",
	}, &timeTaken)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Score != 5 || result.Total != 5 || result.Percentage != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ResultID == 0 {
		t.Fatalf("expected a database-assigned result id")
	}

	// Second grade hits the Redis answer-key cache and still agrees.
	again, err := service.GradeSubmission(ctx, "Bob", map[string]string{
		"1": "A", "2": "A", "3": "C",
	}, nil)
	if err != nil {
		t.Fatalf("grade again: %v", err)
	}
	if again.Score != 2 || again.Total != 3 {
		t.Fatalf("unexpected cached grade: %+v", again)
	}

	entries, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].UserName != "Alice" {
		t.Fatalf("expected Alice leading, got %+v", entries)
	}

	stats, err := service.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAttempts != 2 || stats.HighestScore != 5 || stats.UniqueUsers != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quizzy", "POSTGRES_PASSWORD": "quizzypass", "POSTGRES_DB": "quizzydb"},
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
	dsn := fmt.Sprintf("postgres://quizzy:quizzypass@%s:%s/quizzydb?sslmode=disable", host, port.Port())
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
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

// seedQuestions migrates the schema and loads the five-question bank with
// correct labels [A,B,C,D,A].
func seedQuestions(t *testing.T, ctx context.Context, dsn string) {
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

	labels := []string{"A", "B", "C", "D", "A"}
	for i, label := range labels {
		_, err := db.ExecContext(ctx,
			`INSERT INTO questions (question, option_a, option_b, option_c, option_d, correct_answer)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			fmt.Sprintf("Question %d", i+1), "a", "b", "c", "d", label)
		if err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
