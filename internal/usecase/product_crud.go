package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/google/uuid"
)

// CreateProduct сохраняет изображение и создаёт товар.
// Если запись в хранилище не удалась, только что сохранённый файл удаляется.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validator.validateCreate(req); err != nil {
		return nil, e.Wrap(op, err)
	}
	if req.Image == nil {
		return nil, e.Wrap(op, e.ErrImageRequired)
	}

	imageURL, err := p.imagesInfra.SaveImage(ctx, req.Image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Product
	err = p.trManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.productRepo.Create(ctx, req.toProduct(imageURL))
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductCreated, created)
	})
	if err != nil {
		p.logger.Warnf("Cleaning up orphaned image after failed create. image_url: %s, error: %v", imageURL, e.Wrap(op, err))
		p.imagesInfra.RemoveImage(imageURL)
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateProduct применяет частичное изменение товара.
// Новое изображение заменяет старое: старый файл удаляется только после успешной записи.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, id string, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := p.validator.validateUpdate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	existing, err := p.GetProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	patch := req.toPatch()
	oldImageURL := existing.ImageURL
	newImageURL := ""
	if req.Image != nil {
		newImageURL, err = p.imagesInfra.SaveImage(ctx, req.Image)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		patch.ImageURL = &newImageURL
	}
	patch.Apply(existing)

	var updated *domain.Product
	err = p.trManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = p.productRepo.Update(ctx, existing)
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductUpdated, updated)
	})
	if err != nil {
		if newImageURL != "" {
			p.logger.Warnf("Cleaning up orphaned image after failed update. image_url: %s, error: %v", newImageURL, e.Wrap(op, err))
			p.imagesInfra.RemoveImage(newImageURL)
		}
		return nil, e.Wrap(op, err)
	}

	if newImageURL != "" && oldImageURL != "" && oldImageURL != newImageURL {
		p.imagesInfra.RemoveImage(oldImageURL)
	}

	return updated, nil
}

// DeleteProduct удаляет товар и его изображение. Возвращает удалённую запись.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "ProductUseCase.DeleteProduct"

	existing, err := p.GetProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if existing.ImageURL != "" {
		p.imagesInfra.RemoveImage(existing.ImageURL)
	}

	var deleted *domain.Product
	err = p.trManager.Do(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = p.productRepo.Delete(ctx, existing.ID)
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductDeleted, deleted)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return deleted, nil
}

// recordEvent пишет событие в outbox в текущей транзакции.
func (p *ProductUseCase) recordEvent(ctx context.Context, eventType ProductEventType, product *domain.Product) error {
	if p.outboxRepo == nil {
		return nil
	}

	event, err := NewOutboxEvent(eventType, product, time.Now().UTC())
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, event)
	return err
}

// NewOutboxEvent формирует событие об изменении товара.
func NewOutboxEvent(eventType ProductEventType, product *domain.Product, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	payload, err := json.Marshal(ProductEvent{
		EventID:    eventID,
		EventType:  eventType,
		ProductID:  product.ID,
		OccurredAt: now,
		Product:    product,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: product.ID,
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: now,
	}, nil
}
