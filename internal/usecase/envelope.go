package usecase

import "github.com/DRSN-tech/pukkaprice-backend/internal/domain"

// Filters — эхо параметров фильтрации в ответе листинга.
type Filters struct {
	Search        string `json:"search,omitempty"`
	Keyword       string `json:"keyword,omitempty"`
	Category      string `json:"category,omitempty"`
	SubCategory   string `json:"subCategory,omitempty"`
	SourceWebsite string `json:"sourceWebsite,omitempty"`
	Deals         string `json:"deals,omitempty"`
	MinPrice      string `json:"minPrice,omitempty"`
	MaxPrice      string `json:"maxPrice,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	SortOrder     string `json:"sortOrder,omitempty"`
	Page          string `json:"page,omitempty"`
	Limit         string `json:"limit,omitempty"`
}

// ListEnvelope — единый ответ листинга и поиска.
type ListEnvelope struct {
	Success    bool             `json:"success"`
	Data       []domain.Product `json:"data"`
	Pagination Pagination       `json:"pagination"`
	Filters    Filters          `json:"filters"`
}

// DataEnvelope — ответ с произвольными данными.
type DataEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func NewListEnvelope(products []domain.Product, pagination Pagination, filters Filters) *ListEnvelope {
	if products == nil {
		products = []domain.Product{}
	}

	return &ListEnvelope{
		Success:    true,
		Data:       products,
		Pagination: pagination,
		Filters:    filters,
	}
}

// DegradedListEnvelope — пустой, но корректный ответ вместо внутренней ошибки чтения.
func DegradedListEnvelope(filters Filters) *ListEnvelope {
	return NewListEnvelope(nil, EmptyPagination(), filters)
}

func NewDataEnvelope[T any](data T) *DataEnvelope[T] {
	return &DataEnvelope[T]{Success: true, Data: data}
}
