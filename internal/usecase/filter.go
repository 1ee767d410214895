package usecase

import (
	"strings"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
)

// clauseBuilder строит один независимый фрагмент условия.
// Отсутствующий параметр даёт MatchAll и ничего не ограничивает.
type clauseBuilder func(q *ProductQuery) domain.Predicate

var listClauses = []clauseBuilder{
	searchClause,
	categoryClause,
	subCategoryClause,
	sourceWebsiteClause,
	dealsClause,
	priceRangeClause,
}

var searchClauses = []clauseBuilder{
	exactCategoryClause,
	subCategoryClause,
	sourceWebsiteClause,
	dealsClause,
	priceRangeClause,
}

// BuildListPredicate строит условие листинга как конъюнкцию фрагментов.
func BuildListPredicate(q *ProductQuery) domain.Predicate {
	return build(q, listClauses)
}

// BuildSearchPredicate строит условие поиска по ключевому слову.
// Ключевое слово обязательно, категория сравнивается точно.
func BuildSearchPredicate(keyword string, q *ProductQuery) domain.Predicate {
	return domain.AllOf(textMatch(keyword), build(q, searchClauses))
}

func build(q *ProductQuery, builders []clauseBuilder) domain.Predicate {
	clauses := make([]domain.Predicate, 0, len(builders))
	for _, b := range builders {
		clauses = append(clauses, b(q))
	}

	return domain.AllOf(clauses...)
}

func searchClause(q *ProductQuery) domain.Predicate {
	return textMatch(q.Search)
}

// textMatch — подстрока в названии или описании без учёта регистра.
func textMatch(text string) domain.Predicate {
	if text == "" {
		return domain.MatchAll{}
	}

	return domain.AnyOf(
		domain.ContainsFold(domain.FieldTitle, text),
		domain.ContainsFold(domain.FieldDescription, text),
	)
}

// categoryClause расширяет сравнение категории на варианты регистра:
// в исторических данных регистр категорий не согласован.
func categoryClause(q *ProductQuery) domain.Predicate {
	return CategoryMatch(q.Category)
}

// CategoryMatch — равенство категории точно, в верхнем, в нижнем регистре
// или без учёта регистра.
func CategoryMatch(category string) domain.Predicate {
	if category == "" {
		return domain.MatchAll{}
	}

	return domain.AnyOf(
		domain.Eq(domain.FieldCategory, category),
		domain.Eq(domain.FieldCategory, strings.ToUpper(category)),
		domain.Eq(domain.FieldCategory, strings.ToLower(category)),
		domain.EqFold(domain.FieldCategory, category),
	)
}

func exactCategoryClause(q *ProductQuery) domain.Predicate {
	return eqIfSet(domain.FieldCategory, q.Category)
}

func subCategoryClause(q *ProductQuery) domain.Predicate {
	return eqIfSet(domain.FieldSubCategory, q.SubCategory)
}

func sourceWebsiteClause(q *ProductQuery) domain.Predicate {
	return eqIfSet(domain.FieldSourceWebsite, q.SourceWebsite)
}

func dealsClause(q *ProductQuery) domain.Predicate {
	if q.Deals == nil {
		return domain.MatchAll{}
	}

	return domain.Eq(domain.FieldDeals, *q.Deals)
}

func priceRangeClause(q *ProductQuery) domain.Predicate {
	var clauses []domain.Predicate
	if q.MinPrice != nil {
		clauses = append(clauses, domain.Gte(domain.FieldPrice, *q.MinPrice))
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, domain.Lte(domain.FieldPrice, *q.MaxPrice))
	}

	return domain.AllOf(clauses...)
}

func eqIfSet(field domain.ProductField, value string) domain.Predicate {
	if value == "" {
		return domain.MatchAll{}
	}

	return domain.Eq(field, value)
}
