// Package app собирает зависимости сервиса и управляет его жизненным циклом.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/go-recommender/internal/cfg"
	v1Grpc "github.com/DRSN-tech/go-recommender/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/go-recommender/internal/delivery/v1/http"
	"github.com/DRSN-tech/go-recommender/internal/infrastructure/kafka"
	"github.com/DRSN-tech/go-recommender/internal/infrastructure/llm"
	minioInfra "github.com/DRSN-tech/go-recommender/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/go-recommender/internal/repository/minio"
	"github.com/DRSN-tech/go-recommender/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/go-recommender/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/go-recommender/internal/repository/qdrant"
	"github.com/DRSN-tech/go-recommender/internal/repository/redis"
	redisConv "github.com/DRSN-tech/go-recommender/internal/repository/redis/converter"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/clients"
	"github.com/DRSN-tech/go-recommender/pkg/closer"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/DRSN-tech/go-recommender/pkg/postgres"
	"github.com/DRSN-tech/go-recommender/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	outbox  *kafka.OutboxWorker
}

// NewApp подключает хранилища и внешние сервисы. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}

	initialized := false
	defer func() {
		if !initialized {
			if closeErr := app.closer.CloseWithTimeout(shutdownTimeout); closeErr != nil {
				log.Warnf("cleanup after failed init: %v", closeErr)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := initPGDB(ctx, log, cfg.Db)
	if err != nil {
		return nil, err
	}
	app.closer.AddFunc("postgres", db.Close)

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.OrderConverter{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
	recRepo := pgdb.NewRecommendationRepo(db.Pool, pgdbConv.RecommendationConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})

	redisClient, err := clients.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, e.Wrap("failed to connect to redis", err)
	}
	app.closer.AddErr("redis", redisClient.Close)
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ProductConverter{}, cfg.Redis, log)

	images, err := initImages(ctx, cfg.Minio)
	if err != nil {
		return nil, err
	}

	qdrantClient, err := initQdrant(ctx, cfg.Qdrant, log)
	if err != nil {
		return nil, err
	}

	var (
		embRepo     *qdrantRepo.EmbeddingRepo
		indexWriter usecase.IndexWriter
	)
	if qdrantClient != nil {
		app.closer.AddErr("qdrant", qdrantClient.Close)
		embRepo = qdrantRepo.NewEmbeddingRepo(qdrantClient)
		indexWriter = embRepo
	}

	ranker, err := selectRanker(cfg.Recommend, productRepo, embRepo, log)
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		return nil, e.Wrap("failed to initialize llm client", err)
	}

	deps := usecase.RecommendationDeps{
		ProductRepo:        productRepo,
		OrderRepo:          orderRepo,
		CategoryRepo:       categoryRepo,
		RecommendationRepo: recRepo,
		OutboxRepo:         outboxRepo,
		ConversationRepo:   conversationStore(cfg.Session, redisClient),
		CacheRepo:          cacheRepo,
		Ranker:             ranker,
		Images:             images,
		Encoder:            kafka.NewEventEncoder(),
		Tx:                 tr.NewManager(db.Pool),
	}
	if llmClient != nil {
		deps.Embedder = llm.NewEmbedder(llmClient, cfg.LLM, log)
		deps.Extractor = llm.NewExtractor(llmClient, cfg.LLM, log)
		deps.Composer = llm.NewComposer(llmClient, cfg.LLM, log)
	} else {
		log.Warnf("LLM provider disabled, chat and admin recommendations are unavailable")
	}

	recUC := usecase.NewRecommendationUC(deps, toOptions(cfg.Recommend), log)
	indexUC := usecase.NewIndexUC(productRepo, cacheRepo, indexWriter, cfg.Recommend.IndexSyncBatch, log)

	producer := kafka.NewProducer(log, cfg.Kafka)
	app.closer.AddErr("kafka producer", producer.Close)
	if err := producer.EnsureTopic(ctx); err != nil {
		return nil, e.Wrap("failed to ensure kafka topic", err)
	}

	// Воркер останавливается раньше продюсера и пула соединений.
	app.outbox = kafka.NewOutboxWorker(outboxRepo, log, producer, db.DSN, cfg.Kafka.BatchSize)
	app.closer.AddFunc("outbox worker", app.outbox.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, cfg.Http, cfg.Session, log).Init(recUC, indexUC)
	app.httpSrv = v1Http.NewServer(r, cfg.Http)
	app.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	// Серверы регистрируются последними и останавливаются первыми.
	app.closer.Add("grpc server", app.grpcSrv.Stop)
	app.closer.Add("http server", app.httpSrv.Stop)

	initialized = true
	return app, nil
}

// Run запускает серверы и outbox-воркер и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.outbox.Start(ctx)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	a.grpcSrv.SetServing(true)

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	a.grpcSrv.SetServing(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	cancel()
	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.PGDBCfg) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func initImages(ctx context.Context, cfg *config.MinIOCfg) (*minioInfra.ImageResolver, error) {
	minioClient, err := clients.NewMinIOClient(ctx, cfg)
	if err != nil {
		return nil, e.Wrap("failed to initialize minio", err)
	}

	return minioInfra.NewImageResolver(s3Repo.NewImageRepo(minioClient, cfg), cfg.PresignTTL), nil
}

// initQdrant возвращает nil, если Qdrant не настроен.
func initQdrant(ctx context.Context, cfg *config.QdrantCfg, log logger.Logger) (*clients.QdrantClient, error) {
	if !cfg.Enabled() {
		log.Infof("Qdrant is not configured, vector index sync is disabled")
		return nil, nil
	}

	client, err := clients.NewQdrantClient(cfg)
	if err != nil {
		return nil, e.Wrap("failed to initialize qdrant", err)
	}

	if err := client.EnsureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, e.Wrap("failed to initialize qdrant collection", err)
	}

	return client, nil
}
