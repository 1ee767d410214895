package converter

import (
	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// minorUnitPlaces — цена хранится в сотых долях валюты.
const minorUnitPlaces = 2

var minorUnit = decimal.New(1, minorUnitPlaces)

// ToMinor переводит цену в минимальные единицы с банковским округлением.
func ToMinor(d decimal.Decimal) int64 {
	return d.Mul(minorUnit).RoundBank(0).IntPart()
}

func ToMinorCeil(d decimal.Decimal) int64 {
	return d.Mul(minorUnit).Ceil().IntPart()
}

func ToMinorFloor(d decimal.Decimal) int64 {
	return d.Mul(minorUnit).Floor().IntPart()
}

func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitPlaces)
}

// ProductConverter преобразует Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	model := &ProductModel{
		ID:              entity.ID,
		Title:           entity.Title,
		Description:     entity.Description,
		ImageURL:        entity.ImageURL,
		AffiliateLink:   entity.AffiliateLink,
		SEOTitle:        entity.SEOTitle,
		MetaDescription: entity.MetaDescription,
		SourceWebsite:   string(entity.SourceWebsite),
		SubCategory:     string(entity.SubCategory),
		Deals:           entity.Deals,
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}
	if entity.Category != nil {
		c := string(*entity.Category)
		model.Category = &c
	}
	if entity.Price != nil {
		minor := ToMinor(*entity.Price)
		model.PriceMinor = &minor
	}

	return model
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	entity := &domain.Product{
		ID:              model.ID,
		Title:           model.Title,
		Description:     model.Description,
		ImageURL:        model.ImageURL,
		AffiliateLink:   model.AffiliateLink,
		SEOTitle:        model.SEOTitle,
		MetaDescription: model.MetaDescription,
		SourceWebsite:   domain.SourceWebsite(model.SourceWebsite),
		SubCategory:     domain.SubCategory(model.SubCategory),
		Deals:           model.Deals,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
	if model.Category != nil {
		c := domain.Category(*model.Category)
		entity.Category = &c
	}
	if model.PriceMinor != nil {
		price := FromMinor(*model.PriceMinor)
		entity.Price = &price
	}

	return entity
}

func (c ProductConverter) ToArrEntity(models []ProductModel) []domain.Product {
	res := make([]domain.Product, 0, len(models))
	for i := range models {
		res = append(res, *c.ToEntity(&models[i]))
	}
	return res
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.ProductEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []OutboxEventModel) []usecase.OutboxEvent {
	res := make([]usecase.OutboxEvent, 0, len(models))
	for i := range models {
		res = append(res, *c.ToEntity(&models[i]))
	}
	return res
}
