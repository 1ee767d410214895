package usecase

import (
	"context"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
)

// TxManager выполняет fn в транзакции, доступной репозиториям через ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Find(ctx context.Context, query domain.FindQuery) ([]domain.Product, error)
	Count(ctx context.Context, where domain.Predicate) (int64, error)
	GroupCount(ctx context.Context, field domain.ProductField, where domain.Predicate, order domain.GroupOrder) ([]domain.GroupCount, error)
	DistinctTitles(ctx context.Context, where domain.Predicate, limit int) ([]string, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ResetStuck(ctx context.Context) (int64, error)
}

// ImageRepository — хранилище файлов изображений, адресуемых по имени.
type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Open(ctx context.Context, name string) (*domain.ImageObject, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}
