package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizzora/internal/app"
	"quizzora/internal/domain"
	pgstore "quizzora/internal/infra/postgres"
	rediscache "quizzora/internal/infra/redis"
	pgmigrations "quizzora/internal/infra/postgres/migrations"
)

func TestPlayThroughEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	var store app.Store = pgstore.NewStore(pool)
	store = rediscache.NewLeaderboardCache(
		rediscache.NewQuizCache(store, redisClient, 5*time.Minute),
		redisClient, 2*time.Second,
	)

	log := logrus.New()
	log.SetOutput(io.Discard)

	author := app.NewAuthorService(store)
	play := app.NewPlayService(store, log)
	boards := app.NewLeaderboardService(store)
	imports := app.NewImportService(store, log)

	quiz, err := author.Create(ctx, "owner-a", domain.Quiz{
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{Text: "3"}, {Text: "4"}, {Text: "5"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	// Mark the second option correct and save the whole document back.
	quiz.Questions[0].CorrectOptionID = quiz.Questions[0].Options[1].ID
	if quiz, err = author.Save(ctx, "owner-a", quiz); err != nil {
		t.Fatalf("save quiz: %v", err)
	}

	first, err := play.Submit(ctx, app.SubmitRequest{
		QuizID:     quiz.ID,
		PlayerName: "Alice",
		Answers:    domain.AnswerSet{quiz.Questions[0].ID: quiz.Questions[0].Options[0].ID},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Score != 0 || first.Total != 1 || !first.Recorded {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := play.Submit(ctx, app.SubmitRequest{
		QuizID:     quiz.ID,
		PlayerName: "Bob",
		Answers:    domain.AnswerSet{quiz.Questions[0].ID: quiz.Questions[0].CorrectOptionID},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if second.Score != 1 {
		t.Fatalf("expected Bob to score 1, got %+v", second)
	}

	ranked, err := boards.Leaderboard(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranked) != 2 || ranked[0].ID != second.SubmissionID || ranked[1].ID != first.SubmissionID {
		t.Fatalf("unexpected ranking %+v", ranked)
	}

	dup, err := imports.Import(ctx, quiz.ID, "owner-b")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if dup.IsPublic || dup.OwnerID != "owner-b" {
		t.Fatalf("unexpected copy %+v", dup)
	}
	copyOnDisk, err := store.GetQuiz(ctx, dup.ID)
	if err != nil {
		t.Fatalf("reload copy: %v", err)
	}
	q := copyOnDisk.Questions[0]
	if q.CorrectOptionID == "" || !q.HasOption(q.CorrectOptionID) {
		t.Fatalf("copy lost its remapped answer: %+v", q)
	}

	// Deleting the original cascades its submissions but leaves the duplicate.
	if err := author.Delete(ctx, "owner-a", quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := boards.Leaderboard(ctx, quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound after delete, got %v", err)
	}
	if _, err := store.GetQuiz(ctx, dup.ID); err != nil {
		t.Fatalf("copy vanished with the source: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
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
