package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/jitter"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
)

// UploadsPath — публичный префикс, по которому отдаются изображения.
const UploadsPath = "/uploads/"

const (
	deleteAttempts = 3
	deleteTimeout  = 30 * time.Second
)

// ImagesInfrastructure сохраняет изображения товаров и удаляет их в фоне.
type ImagesInfrastructure struct {
	repo        usecase.ImageRepository
	baseURL     string
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	now         func() time.Time
	backoff     time.Duration
}

func NewImagesInfrastructure(repo usecase.ImageRepository, baseURL string, logger logger.Logger, shutdownCtx context.Context) *ImagesInfrastructure {
	return &ImagesInfrastructure{
		repo:        repo,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
		shutdownCtx: shutdownCtx,
		now:         time.Now,
		backoff:     time.Second,
	}
}

// SaveImage сохраняет файл под именем <unix-ms>-<исходное имя> и возвращает публичный URL.
func (i *ImagesInfrastructure) SaveImage(ctx context.Context, image *usecase.ProductImage) (string, error) {
	const op = "ImagesInfrastructure.SaveImage"

	ext, err := ExtensionFromMIME(image.MimeType)
	if err != nil {
		return "", e.Wrap(op, fmt.Errorf("%w: %s", err, image.MimeType))
	}

	name := StoredName(i.now(), image.Name, ext)
	stored, err := i.repo.Upload(ctx, domain.NewImage(name, image.Data, image.MimeType))
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return i.URL(stored), nil
}

// URL строит публичный адрес файла.
func (i *ImagesInfrastructure) URL(name string) string {
	return i.baseURL + UploadsPath + url.PathEscape(name)
}

func (i *ImagesInfrastructure) OpenImage(ctx context.Context, name string) (*domain.ImageObject, error) {
	return i.repo.Open(ctx, name)
}

// RemoveImage запускает фоновое удаление файла по его URL.
func (i *ImagesInfrastructure) RemoveImage(imageURL string) {
	name, ok := NameFromURL(imageURL)
	if !ok {
		i.logger.Warnf("skip image removal, cannot derive file name from url: %q", imageURL)
		return
	}

	i.wg.Add(1)
	go i.removeWithRetry(name)
}

// removeWithRetry удаляет файл с экспоненциальной задержкой и jitter.
// Отсутствие файла не считается ошибкой удаления.
func (i *ImagesInfrastructure) removeWithRetry(name string) {
	defer i.wg.Done()
	const op = "ImagesInfrastructure.removeWithRetry"

	ctx, cancel := context.WithTimeout(i.shutdownCtx, deleteTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < deleteAttempts; attempt++ {
		err = i.repo.Delete(ctx, name)
		if err == nil {
			i.logger.Debugf("%s: image %s deleted", op, name)
			return
		}
		if errors.Is(err, e.ErrImageNotFound) {
			i.logger.Warnf("%s: image %s already absent", op, name)
			return
		}

		if attempt < deleteAttempts-1 {
			delay := jitter.ExponentialBackoff(i.backoff, deleteTimeout, attempt, jitter.DefaultJitter)
			if !jitter.Sleep(delay, ctx.Done()) {
				i.logger.Warnf("cleanup interrupted by shutdown during backoff, image=%v", name)
				return
			}
		}
	}

	i.logger.Warnf("%s: failed to delete image %s: %v", op, name, err)
}

// WaitForCleanup ожидает завершения всех фоновых удалений с учётом таймаута завершения приложения.
func (i *ImagesInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("image cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

// ExtensionFromMIME возвращает расширение файла по MIME-типу изображения.
// Поддерживает jpeg, png, webp, gif. Для остальных типов возвращает e.ErrUnsupportedMediaType.
func ExtensionFromMIME(mime string) (string, error) {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	case "image/gif":
		return "gif", nil
	default:
		return "", e.ErrUnsupportedMediaType
	}
}

// StoredName формирует имя файла в хранилище: <unix-ms>-<очищенное исходное имя>.
// Расширение добавляется, если исходное имя его не содержит.
func StoredName(now time.Time, original, ext string) string {
	base := sanitize(filepath.Base(strings.ReplaceAll(original, `\`, "/")))
	if base == "" {
		base = "image"
	}
	if filepath.Ext(base) == "" && ext != "" {
		base += "." + ext
	}

	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// NameFromURL извлекает имя файла из публичного URL изображения.
func NameFromURL(imageURL string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil || u.Path == "" {
		return "", false
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", false
	}

	return name, true
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	return strings.TrimLeft(b.String(), ".")
}
