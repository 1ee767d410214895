package domain

// Predicate — условие отбора товаров. Строится из независимых фрагментов,
// которые объединяются через AllOf/AnyOf. Фрагменты неизменяемы.
type Predicate interface {
	isPredicate()
}

// Operator — оператор сравнения поля со значением.
type Operator string

const (
	OpEq           Operator = "eq"            // точное равенство
	OpEqFold       Operator = "eq_fold"       // равенство без учёта регистра
	OpContains     Operator = "contains"      // подстрока с учётом регистра
	OpContainsFold Operator = "contains_fold" // подстрока без учёта регистра
	OpGte          Operator = "gte"
	OpLte          Operator = "lte"
)

// MatchAll — условие без ограничений.
type MatchAll struct{}

// Compare сравнивает поле товара со значением.
type Compare struct {
	Field ProductField
	Op    Operator
	Value any
}

// And истинно, если истинны все вложенные условия.
type And struct {
	Clauses []Predicate
}

// Or истинно, если истинно хотя бы одно вложенное условие.
type Or struct {
	Clauses []Predicate
}

func (MatchAll) isPredicate() {}
func (Compare) isPredicate()  {}
func (And) isPredicate()      {}
func (Or) isPredicate()       {}

func Eq(field ProductField, value any) Predicate {
	return Compare{Field: field, Op: OpEq, Value: value}
}

func EqFold(field ProductField, value string) Predicate {
	return Compare{Field: field, Op: OpEqFold, Value: value}
}

func Contains(field ProductField, value string) Predicate {
	return Compare{Field: field, Op: OpContains, Value: value}
}

func ContainsFold(field ProductField, value string) Predicate {
	return Compare{Field: field, Op: OpContainsFold, Value: value}
}

func Gte(field ProductField, value any) Predicate {
	return Compare{Field: field, Op: OpGte, Value: value}
}

func Lte(field ProductField, value any) Predicate {
	return Compare{Field: field, Op: OpLte, Value: value}
}

// AllOf объединяет условия через AND. MatchAll и nil отбрасываются;
// пустой результат означает MatchAll.
func AllOf(clauses ...Predicate) Predicate {
	kept := compact(clauses)
	switch len(kept) {
	case 0:
		return MatchAll{}
	case 1:
		return kept[0]
	default:
		return And{Clauses: kept}
	}
}

// AnyOf объединяет условия через OR. Если среди них есть MatchAll,
// результат — MatchAll; пустой список тоже означает MatchAll.
func AnyOf(clauses ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(clauses))
	for _, c := range clauses {
		if c == nil {
			continue
		}
		if IsMatchAll(c) {
			return MatchAll{}
		}
		kept = append(kept, c)
	}

	switch len(kept) {
	case 0:
		return MatchAll{}
	case 1:
		return kept[0]
	default:
		return Or{Clauses: kept}
	}
}

// IsMatchAll сообщает, что условие ничего не ограничивает.
func IsMatchAll(p Predicate) bool {
	switch v := p.(type) {
	case nil, MatchAll:
		return true
	case And:
		for _, c := range v.Clauses {
			if !IsMatchAll(c) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range v.Clauses {
			if IsMatchAll(c) {
				return true
			}
		}
		return len(v.Clauses) == 0
	default:
		return false
	}
}

func compact(clauses []Predicate) []Predicate {
	kept := make([]Predicate, 0, len(clauses))
	for _, c := range clauses {
		if IsMatchAll(c) {
			continue
		}
		kept = append(kept, c)
	}

	return kept
}
