package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// Поля multipart-формы, в которых принимается файл изображения.
var imageFields = []string{"image", "file"}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse переводит ошибку в код ответа и сообщение для клиента.
func ToHTTPResponse(err error) (int, string) {
	var validationErr *e.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, e.ErrValidation.Error()
	case errors.Is(err, e.ErrImageRequired):
		return http.StatusBadRequest, "Image file is required"
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusBadRequest, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusBadRequest, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, e.ErrImageNotFound):
		return http.StatusNotFound, e.ErrImageNotFound.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// WriteError пишет тело ошибки. verbose разрешает отдать клиенту текст исходной ошибки.
func WriteError(w http.ResponseWriter, err error, verbose bool) {
	code, msg := ToHTTPResponse(err)
	resp := NewErrorResponse(code, msg)

	var validationErr *e.ValidationError
	switch {
	case errors.As(err, &validationErr):
		resp.Details = validationErr.Messages
	case verbose:
		resp.Details = []string{err.Error()}
	}

	WriteSuccess(w, code, resp)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePrice разбирает необязательную цену. Пустая строка означает отсутствие цены.
// Отрицательные значения и лишние знаки после запятой отсекает валидация в usecase.
func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, e.Wrap(s, e.ErrInvalidPrice)
	}

	// 1 млрд
	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return nil, e.Wrap(s, e.ErrInvalidPrice)
	}

	return &d, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStatusBadRequest, err))
	}

	return nil
}

// formValue возвращает значение поля и признак того, что поле вообще пришло в форме.
func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// parseDeals: true только для строки "true".
func parseDeals(s string) bool {
	return s == "true"
}

func parseCreateForm(form *multipart.Form, maxImageSize int64) (*usecase.CreateProductReq, error) {
	req := &usecase.CreateProductReq{}
	req.Title, _ = formValue(form, "title")
	req.Description, _ = formValue(form, "description")
	req.AffiliateLink, _ = formValue(form, "affiliateLink")
	req.SEOTitle, _ = formValue(form, "SEO_title")
	req.MetaDescription, _ = formValue(form, "META_description")
	req.SourceWebsite, _ = formValue(form, "sourceWebsite")
	req.Category, _ = formValue(form, "category")
	req.SubCategory, _ = formValue(form, "subCategory")

	if deals, ok := formValue(form, "deals"); ok {
		req.Deals = parseDeals(deals)
	}

	if raw, ok := formValue(form, "price"); ok {
		price, err := parsePrice(raw)
		if err != nil {
			return nil, err
		}
		req.Price = price
	}

	image, err := parseImage(form, maxImageSize)
	if err != nil {
		return nil, err
	}
	req.Image = image

	return req, nil
}

// parseUpdateForm заполняет только пришедшие поля, остальные остаются nil.
func parseUpdateForm(form *multipart.Form, maxImageSize int64) (*usecase.UpdateProductReq, error) {
	req := &usecase.UpdateProductReq{}
	strFields := map[string]**string{
		"title":            &req.Title,
		"description":      &req.Description,
		"affiliateLink":    &req.AffiliateLink,
		"SEO_title":        &req.SEOTitle,
		"META_description": &req.MetaDescription,
		"sourceWebsite":    &req.SourceWebsite,
		"category":         &req.Category,
		"subCategory":      &req.SubCategory,
	}
	for key, dst := range strFields {
		if v, ok := formValue(form, key); ok {
			*dst = &v
		}
	}

	if raw, ok := formValue(form, "deals"); ok {
		deals := parseDeals(raw)
		req.Deals = &deals
	}

	if raw, ok := formValue(form, "price"); ok {
		price, err := parsePrice(raw)
		if err != nil {
			return nil, err
		}
		req.Price = price
	}

	image, err := parseImage(form, maxImageSize)
	if err != nil {
		return nil, err
	}
	req.Image = image

	return req, nil
}

// parseImage берёт первый файл из поля image или file. Отсутствие файла не ошибка.
func parseImage(form *multipart.Form, maxSize int64) (*usecase.ProductImage, error) {
	for _, field := range imageFields {
		files := form.File[field]
		if len(files) == 0 {
			continue
		}

		fh := files[0]
		data, mimeType, err := readFile(fh, maxSize)
		if err != nil {
			return nil, err
		}
		return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
	}

	return nil, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}

// parseProductQuery собирает сырые параметры выборки из строки запроса.
func parseProductQuery(r *http.Request) *usecase.RawProductQuery {
	q := r.URL.Query()
	return &usecase.RawProductQuery{
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		SubCategory:   q.Get("subCategory"),
		SourceWebsite: q.Get("sourceWebsite"),
		Deals:         q.Get("deals"),
		SortBy:        q.Get("sortBy"),
		SortOrder:     q.Get("sortOrder"),
		Page:          q.Get("page"),
		Limit:         q.Get("limit"),
		MinPrice:      q.Get("minPrice"),
		MaxPrice:      q.Get("maxPrice"),
	}
}
