package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/pukkaprice-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/pukkaprice-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/pukkaprice-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/pukkaprice-backend/internal/infrastructure/images"
	"github.com/DRSN-tech/pukkaprice-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/pukkaprice-backend/internal/repository/localfs"
	s3Repo "github.com/DRSN-tech/pukkaprice-backend/internal/repository/minio"
	"github.com/DRSN-tech/pukkaprice-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/pukkaprice-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/clients"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/closer"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/postgres"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	healthCheckInterval = 10 * time.Second
	topicTimeout        = 10 * time.Second
	minioInitTimeout    = 10 * time.Second
)

// App связывает хранилища, use case и транспорт и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	// Отменяется последним, после закрытия ресурсов.
	ctx    context.Context
	cancel context.CancelFunc

	db          *postgres.PgDatabase
	imagesInfra *images.ImagesInfrastructure
	httpSrv     *v1Http.Server
	grpcSrv     *v1Grpc.GRPCServer
	health      *v1Grpc.CatalogHealth
	janitor     *images.Janitor
	worker      *kafka.OutboxWorker
	closer      *closer.Closer
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		closer: closer.NewCloser(0),
	}

	if err := a.init(); err != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		cancel()
		if closeErr := a.closer.Close(shutdownCtx); closeErr != nil {
			logger.Errorf(closeErr, "failed to release resources after init error")
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	db, err := initPGDB(a.ctx, a.logger, a.cfg)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.db = db
	a.closer.AddSimple("postgres", db.Close)

	trManager := manager.Must(trmpgx.NewDefaultFactory(db.Pool))
	productRepo := pgdb.NewProductRepo(db.Pool, converter.ProductConverter{})

	imageRepo, err := a.initImageRepo()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	a.imagesInfra = images.NewImagesInfrastructure(imageRepo, a.cfg.Images.BaseURL, a.logger, a.ctx)
	a.closer.Add("image cleanup", a.imagesInfra.WaitForCleanup)

	if interval := a.cfg.Images.CleanupInterval; interval > 0 {
		a.janitor = images.NewJanitor(imageRepo, productRepo, a.logger)
		go a.janitor.Run(a.ctx, interval)
		a.closer.AddSimple("image janitor", a.janitor.Stop)
	}

	// Без Kafka события не пишутся: outboxRepo остаётся nil-интерфейсом.
	var outboxRepo usecase.OutboxRepository
	if a.cfg.Kafka != nil {
		repo, err := a.initOutbox(db)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		outboxRepo = repo
	} else {
		a.logger.Warnf("KAFKA_BROKERS is empty, product events are disabled")
	}

	productUC := usecase.NewProductUC(productRepo, outboxRepo, trManager, a.imagesInfra, a.logger)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger, v1Http.RouterCfg{
		CORSOrigins:  a.cfg.Http.CORSOrigins,
		SwaggerURL:   a.cfg.Http.SwaggerURL,
		Env:          a.cfg.Env,
		Verbose:      a.cfg.IsDevelopment(),
		MaxImageSize: a.cfg.Images.MaxImageSize,
	}).Init(productUC, a.imagesInfra)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices()
	a.health = v1Grpc.NewCatalogHealth(db.Pool, a.grpcSrv.Health(), a.logger)

	return nil
}

func (a *App) initImageRepo() (usecase.ImageRepository, error) {
	if a.cfg.Images.Storage == config.ImageStorageMinio {
		ctx, cancel := context.WithTimeout(a.ctx, minioInitTimeout)
		defer cancel()

		minioClient, err := clients.NewMinIOClient(ctx, a.cfg.Minio)
		if err != nil {
			a.logger.Errorf(err, "failed to initialize MinIO client")
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		a.logger.Infof("images are stored in MinIO bucket %s", a.cfg.Minio.BucketName)
		return s3Repo.NewImageRepo(minioClient, a.cfg.Minio), nil
	}

	repo, err := localfs.NewImageRepo(a.cfg.Images.UploadsDir)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize uploads directory")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	a.logger.Infof("images are stored in %s", a.cfg.Images.UploadsDir)
	return repo, nil
}

func (a *App) initOutbox(db *postgres.PgDatabase) (usecase.OutboxRepository, error) {
	kcfg := a.cfg.Kafka

	producer := kafka.NewProducer(a.logger, kcfg)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

	if err := producer.EnsureTopic(topicTimeout); err != nil {
		a.logger.Errorf(err, "failed to ensure kafka topic %s", kcfg.Topic)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	repo := pgdb.NewOutboxEventRepo(db.Pool, converter.OutboxEventConverter{}, kcfg.OutboxStuckTimeout)

	a.worker = kafka.NewOutboxWorker(repo, a.logger, producer, kafka.OutboxWorkerCfg{
		BatchSize:    kcfg.OutboxBatchSize,
		PollInterval: kcfg.OutboxPollInterval,
		ListenDSN:    db.Dsn,
		Channel:      pgdb.OutboxChannel,
	})
	a.worker.Start(a.ctx)
	a.closer.AddSimple("outbox worker", a.worker.Stop)

	return repo, nil
}

// Run запускает серверы и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	a.health.Run(a.ctx, healthCheckInterval)

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop()
	return appErr
}

// stop останавливает приём запросов, затем закрывает ресурсы в обратном порядке.
func (a *App) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Errorf(err, "gRPC server shutdown error")
		} else {
			a.logger.Warnf("gRPC server shutdown timeout")
		}
	}
	a.health.Stop()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "resources shutdown error")
	}
	a.cancel()

	a.logger.Infof("Application shutdown complete")
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
