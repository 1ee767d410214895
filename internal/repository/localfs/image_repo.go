package localfs

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

// ImageRepo хранит изображения файлами в одной директории.
type ImageRepo struct {
	dir string
}

// NewImageRepo создаёт директорию загрузок, если её ещё нет.
func NewImageRepo(dir string) (*ImageRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &ImageRepo{dir: dir}, nil
}

// Upload записывает файл и возвращает его имя.
// Запись идёт во временный файл с последующим переименованием.
func (i *ImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	path, err := i.path(image.Name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(i.dir, ".upload-*")
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image.Data); err != nil {
		tmp.Close()
		return "", e.Wrap(whereami.WhereAmI(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return image.Name, nil
}

func (i *ImageRepo) Open(_ context.Context, name string) (*domain.ImageObject, error) {
	path, err := i.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrImageNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &domain.ImageObject{
		ReadSeekCloser: f,
		Name:           name,
		ContentType:    mime.TypeByExtension(filepath.Ext(name)),
		Size:           info.Size(),
		ModTime:        info.ModTime(),
	}, nil
}

func (i *ImageRepo) Delete(_ context.Context, name string) error {
	path, err := i.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return e.Wrap(whereami.WhereAmI(), e.ErrImageNotFound)
	}
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// List возвращает имена сохранённых изображений без временных файлов.
func (i *ImageRepo) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// path не даёт выйти за пределы директории загрузок.
func (i *ImageRepo) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", e.Wrap(whereami.WhereAmI(), e.ErrImageNotFound)
	}

	return filepath.Join(i.dir, name), nil
}
