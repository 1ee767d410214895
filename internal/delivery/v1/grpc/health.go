package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CatalogService — имя сервиса в health-проверках.
const CatalogService = "pukkaprice.catalog"

// Pinger проверяет доступность хранилища товаров.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSetter — часть health.Server, которой пользуется CatalogHealth.
type StatusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// CatalogHealth периодически проверяет базу и переключает статус сервиса.
type CatalogHealth struct {
	db      Pinger
	status  StatusSetter
	logger  logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	serving bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewCatalogHealth(db Pinger, status StatusSetter, logger logger.Logger) *CatalogHealth {
	return &CatalogHealth{
		db:      db,
		status:  status,
		logger:  logger,
		timeout: 2 * time.Second,
		stopCh:  make(chan struct{}),
	}
}

// Check выполняет одну проверку и обновляет статус для "" и CatalogService.
func (h *CatalogHealth) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.db.Ping(ctx)
	serving := err == nil

	h.mu.Lock()
	changed := serving != h.serving
	h.serving = serving
	h.mu.Unlock()

	st := healthpb.HealthCheckResponse_SERVING
	if !serving {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.status.SetServingStatus("", st)
	h.status.SetServingStatus(CatalogService, st)

	if changed {
		if serving {
			h.logger.Infof("catalog health: serving")
		} else {
			h.logger.Errorf(err, "catalog health: not serving")
		}
	}

	return serving
}

// Run запускает проверки в фоне с заданным периодом.
func (h *CatalogHealth) Run(ctx context.Context, interval time.Duration) {
	h.Check(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}

func (h *CatalogHealth) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	h.wg.Wait()
}
