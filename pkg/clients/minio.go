package clients

import (
	"context"

	"github.com/DRSN-tech/pukkaprice-backend/internal/cfg"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinIOClient создаёт клиент MinIO и проверяет наличие бакета изображений.
func NewMinIOClient(ctx context.Context, cfg *cfg.MinIOCfg) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := EnsureBucket(ctx, client, cfg.BucketName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return client, nil
}

func EnsureBucket(ctx context.Context, client *minio.Client, bucketName string) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}

	if !exists {
		return client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}

	return nil
}
