package pgdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// productColumns — белый список полей товара и соответствующих колонок.
// Имена колонок никогда не берутся из пользовательского ввода.
var productColumns = map[domain.ProductField]string{
	domain.FieldID:            "id",
	domain.FieldTitle:         "title",
	domain.FieldDescription:   "description",
	domain.FieldSourceWebsite: "source_website",
	domain.FieldCategory:      "category",
	domain.FieldSubCategory:   "sub_category",
	domain.FieldDeals:         "deals",
	domain.FieldPrice:         "price_minor",
	domain.FieldCreatedAt:     "created_at",
	domain.FieldUpdatedAt:     "updated_at",
}

// groupableFields — текстовые поля, по которым допустима группировка.
var groupableFields = map[domain.ProductField]bool{
	domain.FieldSourceWebsite: true,
	domain.FieldCategory:      true,
	domain.FieldSubCategory:   true,
}

func column(field domain.ProductField) (string, error) {
	col, ok := productColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", e.ErrUnknownField, field)
	}
	return col, nil
}

// sqlBuilder накапливает позиционные аргументы запроса.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where возвращает условие с ведущим " WHERE " или пустую строку для MatchAll.
func (b *sqlBuilder) where(p domain.Predicate) (string, error) {
	if domain.IsMatchAll(p) {
		return "", nil
	}

	cond, err := b.predicate(p)
	if err != nil {
		return "", err
	}

	return " WHERE " + cond, nil
}

func (b *sqlBuilder) predicate(p domain.Predicate) (string, error) {
	switch v := p.(type) {
	case nil, domain.MatchAll:
		return "TRUE", nil
	case domain.And:
		return b.join(v.Clauses, " AND ")
	case domain.Or:
		return b.join(v.Clauses, " OR ")
	case domain.Compare:
		return b.compare(v)
	default:
		return "", fmt.Errorf("%w: %T", e.ErrUnsupportedClause, p)
	}
}

func (b *sqlBuilder) join(clauses []domain.Predicate, sep string) (string, error) {
	if len(clauses) == 0 {
		return "TRUE", nil
	}

	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		part, err := b.predicate(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *sqlBuilder) compare(c domain.Compare) (string, error) {
	col, err := column(c.Field)
	if err != nil {
		return "", err
	}

	value, err := columnValue(c)
	if err != nil {
		return "", err
	}

	switch c.Op {
	case domain.OpEq:
		return col + " = " + b.arg(value), nil
	case domain.OpEqFold:
		return "LOWER(" + col + ") = LOWER(" + b.arg(value) + ")", nil
	case domain.OpContains:
		return col + " LIKE " + b.arg(likePattern(value)) + ` ESCAPE '\'`, nil
	case domain.OpContainsFold:
		return col + " ILIKE " + b.arg(likePattern(value)) + ` ESCAPE '\'`, nil
	case domain.OpGte:
		return col + " >= " + b.arg(value), nil
	case domain.OpLte:
		return col + " <= " + b.arg(value), nil
	default:
		return "", fmt.Errorf("%w: operator %q", e.ErrUnsupportedClause, c.Op)
	}
}

// columnValue приводит значение условия к типу колонки.
// Цена хранится в минимальных единицах: нижняя граница округляется вверх, верхняя вниз.
func columnValue(c domain.Compare) (any, error) {
	if c.Field != domain.FieldPrice {
		return c.Value, nil
	}

	d, ok := c.Value.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("%w: price value %T", e.ErrUnsupportedClause, c.Value)
	}

	switch c.Op {
	case domain.OpGte:
		return converter.ToMinorCeil(d), nil
	case domain.OpLte:
		return converter.ToMinorFloor(d), nil
	default:
		return converter.ToMinor(d), nil
	}
}

func likePattern(v any) string {
	return "%" + escapeLike(fmt.Sprint(v)) + "%"
}

// escapeLike экранирует метасимволы LIKE, чтобы подстрока искалась буквально.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderBy формирует сортировку с id как последним ключом для стабильных страниц.
func orderBy(o domain.OrderBy) (string, error) {
	col, err := column(o.Field)
	if err != nil {
		return "", err
	}

	dir := "DESC"
	if o.Order == domain.SortAsc {
		dir = "ASC"
	}

	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir), nil
}
