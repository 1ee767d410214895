package minio

import (
	"bytes"
	"context"
	"errors"

	"github.com/DRSN-tech/pukkaprice-backend/internal/cfg"
	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const noSuchKey = "NoSuchKey"

// ImageRepo реализует хранилище изображений поверх MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение в MinIO и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	reader := bytes.NewReader(image.Data)

	info, err := i.mc.PutObject(ctx, i.cfg.BucketName, image.Name, reader, image.Size, minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Open открывает объект для чтения. Наличие объекта проверяется через Stat.
func (i *ImageRepo) Open(ctx context.Context, name string) (*domain.ImageObject, error) {
	obj, err := i.mc.GetObject(ctx, i.cfg.BucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrImageNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &domain.ImageObject{
		ReadSeekCloser: obj,
		Name:           name,
		ContentType:    stat.ContentType,
		Size:           stat.Size,
		ModTime:        stat.LastModified,
	}, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
// RemoveObject не сообщает об отсутствии объекта, поэтому сначала выполняется StatObject.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if _, err := i.mc.StatObject(ctx, i.cfg.BucketName, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrImageNotFound)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// List возвращает ключи всех объектов бакета.
func (i *ImageRepo) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	for obj := range i.mc.ListObjects(ctx, i.cfg.BucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), obj.Err)
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == noSuchKey
}
