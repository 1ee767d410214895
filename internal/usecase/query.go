package usecase

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// minSuggestionLength — минимальная длина строки для подсказок поиска.
	minSuggestionLength = 2
	maxSuggestions      = 10
)

// sortFields — белый список полей сортировки. Любое другое значение заменяется на createdAt.
var sortFields = map[string]domain.ProductField{
	"title":         domain.FieldTitle,
	"createdAt":     domain.FieldCreatedAt,
	"updatedAt":     domain.FieldUpdatedAt,
	"sourceWebsite": domain.FieldSourceWebsite,
	"category":      domain.FieldCategory,
	"subCategory":   domain.FieldSubCategory,
}

// RawProductQuery — параметры листинга в том виде, в котором они пришли в запросе.
// Пустая строка означает отсутствие параметра.
type RawProductQuery struct {
	Search        string
	Category      string
	SubCategory   string
	SourceWebsite string
	Deals         string
	SortBy        string
	SortOrder     string
	Page          string
	Limit         string
	MinPrice      string
	MaxPrice      string
}

// HasParams сообщает, передан ли хотя бы один из распознаваемых параметров.
// Без параметров листинг отдаёт все товары одной страницей.
func (r *RawProductQuery) HasParams() bool {
	if r == nil {
		return false
	}

	for _, v := range []string{
		r.Search, r.Category, r.SubCategory, r.SourceWebsite, r.Deals,
		r.SortBy, r.SortOrder, r.Page, r.Limit, r.MinPrice, r.MaxPrice,
	} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}

	return false
}

// Echo возвращает параметры запроса как есть, для деградированного ответа.
func (r *RawProductQuery) Echo() Filters {
	if r == nil {
		return Filters{}
	}

	return Filters{
		Search:        r.Search,
		Category:      r.Category,
		SubCategory:   r.SubCategory,
		SourceWebsite: r.SourceWebsite,
		Deals:         r.Deals,
		MinPrice:      r.MinPrice,
		MaxPrice:      r.MaxPrice,
		SortBy:        r.SortBy,
		SortOrder:     r.SortOrder,
		Page:          r.Page,
		Limit:         r.Limit,
	}
}

// ProductQuery — нормализованные параметры фильтрации, сортировки и пагинации.
type ProductQuery struct {
	Search        string
	Category      string
	SubCategory   string
	SourceWebsite string
	Deals         *bool // nil — фильтр не применяется
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	SortBy        domain.ProductField
	SortOrder     domain.SortOrder
	Page          int
	Limit         int

	rawDeals string
}

// Skip — количество записей, пропускаемых до начала страницы.
func (q *ProductQuery) Skip() (int, bool) {
	return Skip(q.Page, q.Limit)
}

func (q *ProductQuery) OrderBy() domain.OrderBy {
	return domain.OrderBy{Field: q.SortBy, Order: q.SortOrder}
}

// Echo возвращает применённые фильтры для ответа.
func (q *ProductQuery) Echo() Filters {
	f := Filters{
		Search:        q.Search,
		Category:      q.Category,
		SubCategory:   q.SubCategory,
		SourceWebsite: q.SourceWebsite,
		Deals:         q.rawDeals,
		SortBy:        string(q.SortBy),
		SortOrder:     string(q.SortOrder),
	}
	if q.MinPrice != nil {
		f.MinPrice = q.MinPrice.String()
	}
	if q.MaxPrice != nil {
		f.MaxPrice = q.MaxPrice.String()
	}

	return f
}

// NormalizeQuery приводит сырые параметры к типизированному виду.
// Никогда не возвращает ошибку: некорректные значения заменяются значениями по умолчанию.
func NormalizeQuery(raw *RawProductQuery) *ProductQuery {
	if raw == nil {
		raw = &RawProductQuery{}
	}

	return &ProductQuery{
		Search:        strings.TrimSpace(raw.Search),
		Category:      strings.TrimSpace(raw.Category),
		SubCategory:   strings.TrimSpace(raw.SubCategory),
		SourceWebsite: strings.TrimSpace(raw.SourceWebsite),
		Deals:         normalizeDeals(raw.Deals),
		MinPrice:      normalizePrice(raw.MinPrice),
		MaxPrice:      normalizePrice(raw.MaxPrice),
		SortBy:        normalizeSortBy(raw.SortBy),
		SortOrder:     normalizeSortOrder(raw.SortOrder),
		Page:          normalizePage(raw.Page),
		Limit:         normalizeLimit(raw.Limit),
		rawDeals:      raw.Deals,
	}
}

// normalizeDeals включает фильтр только для "true".
// "false" и любые другие значения фильтр не применяют, а не исключают товары со скидкой.
func normalizeDeals(s string) *bool {
	if strings.TrimSpace(s) != "true" {
		return nil
	}

	deals := true
	return &deals
}

func normalizeSortBy(s string) domain.ProductField {
	if field, ok := sortFields[strings.TrimSpace(s)]; ok {
		return field
	}

	return domain.FieldCreatedAt
}

func normalizeSortOrder(s string) domain.SortOrder {
	switch domain.SortOrder(strings.ToUpper(strings.TrimSpace(s))) {
	case domain.SortAsc:
		return domain.SortAsc
	default:
		return domain.SortDesc
	}
}

func normalizePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if isPositiveOverflow(err, s) {
		return math.MaxInt
	}
	if err != nil || page < 1 {
		return DefaultPage
	}

	return page
}

func normalizeLimit(s string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(s))
	if isPositiveOverflow(err, s) {
		return MaxLimit
	}
	if err != nil || limit < 1 {
		return DefaultLimit
	}

	return min(limit, MaxLimit)
}

// isPositiveOverflow — число синтаксически верное, но больше math.MaxInt.
func isPositiveOverflow(err error, s string) bool {
	return errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(s), "-")
}

func normalizePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}

	return &d
}
