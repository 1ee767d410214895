package images

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
)

// orphanGracePeriod защищает файлы, товар для которых ещё может быть в процессе записи.
const orphanGracePeriod = time.Hour

// ImageURLSource возвращает URL изображений всех товаров.
type ImageURLSource interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

// Janitor удаляет файлы, на которые не ссылается ни один товар.
type Janitor struct {
	repo    usecase.ImageRepository
	source  ImageURLSource
	logger  logger.Logger
	now     func() time.Time
	grace   time.Duration
	stop    chan struct{}
	stopped chan struct{}
}

func NewJanitor(repo usecase.ImageRepository, source ImageURLSource, logger logger.Logger) *Janitor {
	return &Janitor{
		repo:    repo,
		source:  source,
		logger:  logger,
		now:     time.Now,
		grace:   orphanGracePeriod,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run выполняет очистку каждые interval до вызова Stop.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	defer close(j.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stop:
			return
		case <-ticker.C:
			if n, err := j.Sweep(ctx); err != nil {
				j.logger.Errorf(err, "orphan image sweep failed")
			} else if n > 0 {
				j.logger.Infof("Removed %d orphan images", n)
			}
		}
	}
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.stopped
}

// Sweep удаляет осиротевшие файлы старше grace-периода и возвращает их количество.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	const op = "Janitor.Sweep"

	urls, err := j.source.ImageURLs(ctx)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	inUse := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if name, ok := NameFromURL(u); ok {
			inUse[name] = struct{}{}
		}
	}

	names, err := j.repo.List(ctx)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	removed := 0
	for _, name := range names {
		if _, ok := inUse[name]; ok || !j.expired(name) {
			continue
		}
		if err := j.repo.Delete(ctx, name); err != nil {
			j.logger.Warnf("%s: failed to delete orphan image %s: %v", op, name, err)
			continue
		}
		removed++
	}

	return removed, nil
}

// expired проверяет время загрузки по префиксу имени. Файлы без префикса не трогаются.
func (j *Janitor) expired(name string) bool {
	prefix, _, ok := strings.Cut(name, "-")
	if !ok {
		return false
	}
	ms, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return false
	}

	return j.now().Sub(time.UnixMilli(ms)) > j.grace
}
