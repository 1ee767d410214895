package usecase

import "math"

// Pagination — блок метаданных страницы в ответе листинга.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// Skip вычисляет смещение страницы: (page-1)*limit.
// false означает, что смещение не помещается в int: такая страница заведомо за пределами выборки.
func Skip(page, limit int) (int, bool) {
	if page < 1 {
		page = 1
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return 0, false
	}

	return (page - 1) * limit, true
}

// TotalPages — ceil(total/limit). Для пустой выборки возвращает 1.
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}

	return int((total + int64(limit) - 1) / int64(limit))
}

// NewPagination описывает страницу page размера limit при общем количестве total.
// Страница за пределами выборки допустима: данные пустые, флаги корректны.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := TotalPages(total, limit)

	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// SinglePagePagination описывает выборку без пагинации, где все n записей на одной странице.
func SinglePagePagination(n int) Pagination {
	return Pagination{
		CurrentPage:  1,
		TotalPages:   1,
		TotalItems:   int64(n),
		ItemsPerPage: n,
	}
}

// EmptyPagination — блок пагинации деградированного ответа.
func EmptyPagination() Pagination {
	return Pagination{
		CurrentPage: 1,
		TotalPages:  1,
	}
}
