package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар партнёрской витрины
type Product struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ImageURL        string           `json:"imageUrl"`
	AffiliateLink   string           `json:"affiliateLink"`
	SEOTitle        string           `json:"SEO_title"`
	MetaDescription string           `json:"META_description"`
	SourceWebsite   SourceWebsite    `json:"sourceWebsite"`
	Category        *Category        `json:"category"`
	SubCategory     SubCategory      `json:"subCategory"`
	Deals           bool             `json:"deals"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ProductField — поле товара, по которому возможна фильтрация, сортировка или группировка.
type ProductField string

const (
	FieldID            ProductField = "id"
	FieldTitle         ProductField = "title"
	FieldDescription   ProductField = "description"
	FieldSourceWebsite ProductField = "sourceWebsite"
	FieldCategory      ProductField = "category"
	FieldSubCategory   ProductField = "subCategory"
	FieldDeals         ProductField = "deals"
	FieldPrice         ProductField = "price"
	FieldCreatedAt     ProductField = "createdAt"
	FieldUpdatedAt     ProductField = "updatedAt"
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// OrderBy задаёт сортировку выборки.
type OrderBy struct {
	Field ProductField
	Order SortOrder
}

// FindQuery — параметры выборки товаров из хранилища.
// Take == 0 означает выборку без ограничения.
type FindQuery struct {
	Where   Predicate
	OrderBy OrderBy
	Skip    int
	Take    int
}

// GroupCount — количество товаров с одинаковым значением поля.
// Value == nil соответствует товарам без значения (например, без категории).
type GroupCount struct {
	Value *string
	Count int64
}

// GroupOrder задаёт порядок групп при подсчёте.
type GroupOrder int

const (
	GroupByValue GroupOrder = iota
	GroupByCountDesc
)

// ProductPatch — частичное изменение товара. nil-поля не меняются.
type ProductPatch struct {
	Title           *string
	Description     *string
	ImageURL        *string
	AffiliateLink   *string
	SEOTitle        *string
	MetaDescription *string
	SourceWebsite   *SourceWebsite
	Category        *Category
	SubCategory     *SubCategory
	Deals           *bool
	Price           *decimal.Decimal
}

// Apply переносит заданные поля патча в товар.
func (p *ProductPatch) Apply(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	if p.AffiliateLink != nil {
		product.AffiliateLink = *p.AffiliateLink
	}
	if p.SEOTitle != nil {
		product.SEOTitle = *p.SEOTitle
	}
	if p.MetaDescription != nil {
		product.MetaDescription = *p.MetaDescription
	}
	if p.SourceWebsite != nil {
		product.SourceWebsite = *p.SourceWebsite
	}
	if p.Category != nil {
		c := *p.Category
		product.Category = &c
	}
	if p.SubCategory != nil {
		product.SubCategory = *p.SubCategory
	}
	if p.Deals != nil {
		product.Deals = *p.Deals
	}
	if p.Price != nil {
		price := *p.Price
		product.Price = &price
	}
}
