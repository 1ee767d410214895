package usecase

import (
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла
}

// CreateProductReq — запрос на создание товара.
type CreateProductReq struct {
	Title           string           `json:"title" validate:"required"`
	Description     string           `json:"description" validate:"required"`
	AffiliateLink   string           `json:"affiliateLink" validate:"required,url"`
	SEOTitle        string           `json:"SEO_title" validate:"required,max=60"`
	MetaDescription string           `json:"META_description" validate:"required,max=140"`
	SourceWebsite   string           `json:"sourceWebsite" validate:"required,source_website"`
	Category        string           `json:"category" validate:"omitempty,category"`
	SubCategory     string           `json:"subCategory" validate:"required,sub_category"`
	Deals           bool             `json:"deals"`
	Price           *decimal.Decimal `json:"price"`
	Image           *ProductImage    `json:"-"`
}

// UpdateProductReq — частичное обновление товара. nil-поля не меняются.
type UpdateProductReq struct {
	Title           *string          `json:"title" validate:"omitempty"`
	Description     *string          `json:"description" validate:"omitempty"`
	AffiliateLink   *string          `json:"affiliateLink" validate:"omitempty,url"`
	SEOTitle        *string          `json:"SEO_title" validate:"omitempty,max=60"`
	MetaDescription *string          `json:"META_description" validate:"omitempty,max=140"`
	SourceWebsite   *string          `json:"sourceWebsite" validate:"omitempty,source_website"`
	Category        *string          `json:"category" validate:"omitempty,category"`
	SubCategory     *string          `json:"subCategory" validate:"omitempty,sub_category"`
	Deals           *bool            `json:"deals"`
	Price           *decimal.Decimal `json:"price"`
	Image           *ProductImage    `json:"-"`
}

// CategoriesRes — сгруппированные количества товаров по измерениям каталога.
type CategoriesRes struct {
	Categories     []CategoryCount      `json:"categories"`
	SubCategories  []SubCategoryCount   `json:"subCategories"`
	SourceWebsites []SourceWebsiteCount `json:"sourceWebsites"`
}

type CategoryCount struct {
	Category *string `json:"category"`
	Count    int64   `json:"count"`
}

type SubCategoryCount struct {
	SubCategory *string `json:"subCategory"`
	Count       int64   `json:"count"`
}

type SourceWebsiteCount struct {
	SourceWebsite *string `json:"sourceWebsite"`
	Count         int64   `json:"count"`
}

// OUTBOX

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusProcessed  OutboxStatus = "processed"
)

type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// OutboxEvent — событие, записанное в одной транзакции с изменением товара.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   ProductEventType
	ProductID   string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductEvent — полезная нагрузка события об изменении товара.
type ProductEvent struct {
	EventID    string           `json:"eventId"`
	EventType  ProductEventType `json:"eventType"`
	ProductID  string           `json:"productId"`
	OccurredAt time.Time        `json:"occurredAt"`
	Product    *domain.Product  `json:"product,omitempty"`
}

// INFRASTRUCTURE

// WriteRawMessageReq — сообщение для брокера.
type WriteRawMessageReq struct {
	Key   []byte
	Value []byte
}

// MAPPERS

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewWriteRawMessageReq(key, value []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, Value: value}
}

func (r *CreateProductReq) toProduct(imageURL string) *domain.Product {
	product := &domain.Product{
		Title:           r.Title,
		Description:     r.Description,
		ImageURL:        imageURL,
		AffiliateLink:   r.AffiliateLink,
		SEOTitle:        r.SEOTitle,
		MetaDescription: r.MetaDescription,
		SourceWebsite:   domain.SourceWebsite(r.SourceWebsite),
		SubCategory:     domain.SubCategory(r.SubCategory),
		Deals:           r.Deals,
		Price:           r.Price,
	}
	if r.Category != "" {
		c := domain.Category(r.Category)
		product.Category = &c
	}

	return product
}

func (r *UpdateProductReq) toPatch() *domain.ProductPatch {
	patch := &domain.ProductPatch{
		Title:           r.Title,
		Description:     r.Description,
		AffiliateLink:   r.AffiliateLink,
		SEOTitle:        r.SEOTitle,
		MetaDescription: r.MetaDescription,
		Deals:           r.Deals,
		Price:           r.Price,
	}
	if r.SourceWebsite != nil {
		s := domain.SourceWebsite(*r.SourceWebsite)
		patch.SourceWebsite = &s
	}
	if r.Category != nil {
		c := domain.Category(*r.Category)
		patch.Category = &c
	}
	if r.SubCategory != nil {
		s := domain.SubCategory(*r.SubCategory)
		patch.SubCategory = &s
	}

	return patch
}

func newCategoryCounts(groups []domain.GroupCount) []CategoryCount {
	res := make([]CategoryCount, 0, len(groups))
	for _, g := range groups {
		res = append(res, CategoryCount{Category: g.Value, Count: g.Count})
	}
	return res
}

func newSubCategoryCounts(groups []domain.GroupCount) []SubCategoryCount {
	res := make([]SubCategoryCount, 0, len(groups))
	for _, g := range groups {
		res = append(res, SubCategoryCount{SubCategory: g.Value, Count: g.Count})
	}
	return res
}

func newSourceWebsiteCounts(groups []domain.GroupCount) []SourceWebsiteCount {
	res := make([]SourceWebsiteCount, 0, len(groups))
	for _, g := range groups {
		res = append(res, SourceWebsiteCount{SourceWebsite: g.Value, Count: g.Count})
	}
	return res
}
