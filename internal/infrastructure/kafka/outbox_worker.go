package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/jitter"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	notificationWait  = 30 * time.Second
	reconnectBase     = 2 * time.Second
	reconnectMax      = time.Minute
	publishRetryLimit = 3
)

// OutboxWorkerCfg — параметры доставки событий из outbox.
type OutboxWorkerCfg struct {
	BatchSize    int
	PollInterval time.Duration
	// ListenDSN — строка подключения для LISTEN. Пустая строка оставляет только опрос.
	ListenDSN string
	Channel   string
}

// OutboxWorker переносит события из таблицы outbox в Kafka.
// Будится уведомлением NOTIFY, а при его потере находит события периодическим опросом.
type OutboxWorker struct {
	repo     usecase.OutboxRepository
	logger   logger.Logger
	producer usecase.MessageProducer
	cfg      OutboxWorkerCfg
	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg OutboxWorkerCfg,
) *OutboxWorker {
	return &OutboxWorker{
		repo:     repo,
		logger:   logger,
		producer: producer,
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.cfg.ListenDSN == "" {
		return
	}

	// Запускаем слушатель уведомлений
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и дожидается завершения текущей пачки.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("Outbox worker stopped")
			return
		case <-w.wake:
			w.drain(ctx)
		case <-ticker.C:
			if n, err := w.repo.ResetStuck(ctx); err != nil {
				w.logger.Warnf("reset stuck outbox events failed: %v", err)
			} else if n > 0 {
				w.logger.Warnf("Requeued %d stuck outbox events", n)
			}
			w.drain(ctx)
		}
	}
}

// notify будит цикл обработки, не блокируясь, если он уже разбужен.
func (w *OutboxWorker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.cfg.ListenDSN)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = c.Exec(ctx, "LISTEN "+w.cfg.Channel); err != nil {
			c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to %q channel", w.cfg.Channel)
		return nil
	}

	// Прерывание ожидания при остановке воркера
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-listenCtx.Done():
		}
	}()

	for attempt := 0; ; attempt++ {
		if listenCtx.Err() != nil {
			return
		}

		if conn == nil {
			if err := connect(); err != nil {
				w.logger.Warnf("LISTEN connect failed: %v", err)
				if !jitter.Sleep(jitter.ExponentialBackoff(reconnectBase, reconnectMax, attempt, jitter.DefaultJitter), listenCtx.Done()) {
					return
				}
				continue
			}
			attempt = 0
		}

		waitCtx, waitCancel := context.WithTimeout(listenCtx, notificationWait)
		notif, err := conn.WaitForNotification(waitCtx)
		waitCancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				if listenCtx.Err() != nil {
					conn.Close(context.Background())
					return
				}
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == w.cfg.Channel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.notify()
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		// Неотправленное событие остаётся в processing и вернётся в очередь через ResetStuck
		if err := w.processEvent(ctx, &event); err != nil {
			w.logger.Errorf(err, "publish outbox event failed. event_id: %s", event.EventID)
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return len(events) == w.cfg.BatchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq([]byte(event.ProductID), event.Payload)

	var err error
	for attempt := 0; attempt < publishRetryLimit; attempt++ {
		if err = w.producer.WriteRawMessage(ctx, req); err == nil {
			return nil
		}
		if !isRetryableError(err) {
			return e.Wrap("Permanent Kafka failure", err)
		}
		if !jitter.Sleep(jitter.ExponentialBackoff(100*time.Millisecond, 2*time.Second, attempt, jitter.DefaultJitter), ctx.Done()) {
			break
		}
	}

	return e.Wrap("Temporary Kafka failure, will retry", err)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
