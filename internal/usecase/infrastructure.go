package usecase

import (
	"context"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
)

type ImagesInfra interface {
	// SaveImage сохраняет изображение и возвращает его публичный URL.
	SaveImage(ctx context.Context, image *ProductImage) (string, error)
	// RemoveImage удаляет файл по публичному URL в фоне. Ошибки только логируются.
	RemoveImage(imageURL string)
	OpenImage(ctx context.Context, name string) (*domain.ImageObject, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
