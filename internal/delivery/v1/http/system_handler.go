package http

import (
	"context"
	"net/http"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	apiName    = "PukkaPrice Backend API"
	apiVersion = "1.0.0"
)

// ImageOpener отдаёт сохранённые изображения товаров.
type ImageOpener interface {
	OpenImage(ctx context.Context, name string) (*domain.ImageObject, error)
}

type SystemHandler struct {
	images ImageOpener
	env    string
	logger logger.Logger
	now    func() time.Time
}

func NewSystemHandler(images ImageOpener, env string, logger logger.Logger) *SystemHandler {
	return &SystemHandler{images: images, env: env, logger: logger, now: time.Now}
}

type IndexRes struct {
	Message       string            `json:"message"`
	Version       string            `json:"version"`
	Endpoints     map[string]string `json:"endpoints"`
	Documentation string            `json:"documentation"`
}

type HealthRes struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

var endpoints = map[string]string{
	"health":                "/health",
	"products":              "/products",
	"categories":            "/products/categories",
	"deals":                 "/products/deals",
	"subcategories":         "/products/subcategories/:category",
	"search":                "/products?search=keyword",
	"searchByKeyword":       "/products/search?q=keyword",
	"filterByCategory":      "/products?category=ELECTRONICS",
	"filterBySubCategory":   "/products?subCategory=SMARTPHONES",
	"filterBySourceWebsite": "/products?sourceWebsite=AMAZON",
	"filterByDeals":         "/products?deals=true",
	"filterByPrice":         "/products?minPrice=10&maxPrice=100",
	"suggestions":           "/products/search/suggestions?q=keyword",
	"singleProduct":         "/products/:id",
	"createProduct":         "POST /products",
	"updateProduct":         "PATCH /products/:id",
	"deleteProduct":         "DELETE /products/:id",
	"staticFiles":           "/uploads/:filename",
	"createProductAdmin":    "POST /admin/products",
	"getAllProductsAdmin":   "GET /admin/products",
	"getProductAdmin":       "GET /admin/products/:id",
	"updateProductAdmin":    "PATCH /admin/products/:id",
	"deleteProductAdmin":    "DELETE /admin/products/:id",
}

// index
//
//	@Summary	Описание API
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	IndexRes
//	@Router		/ [get]
func (s *SystemHandler) index(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, &IndexRes{
		Message:       apiName,
		Version:       apiVersion,
		Endpoints:     endpoints,
		Documentation: "/swagger/index.html",
	})
}

// health
//
//	@Summary	Проверка работоспособности
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	HealthRes
//	@Router		/health [get]
func (s *SystemHandler) health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, &HealthRes{
		Status:      "OK",
		Timestamp:   s.now().UTC().Format(time.RFC3339Nano),
		Environment: s.env,
		Version:     apiVersion,
	})
}

// serveUpload
//
//	@Summary	Файл изображения товара
//	@Tags		system
//	@Produce	octet-stream
//	@Param		filename	path	string	true	"Имя файла"
//	@Success	200
//	@Failure	404	{object}	ErrorResponse
//	@Router		/uploads/{filename} [get]
func (s *SystemHandler) serveUpload(w http.ResponseWriter, r *http.Request) {
	obj, err := s.images.OpenImage(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		code, _ := ToHTTPResponse(err)
		if code >= http.StatusInternalServerError {
			s.logger.Errorf(err, "open upload %s", r.URL.Path)
		}
		WriteError(w, err, false)
		return
	}
	defer obj.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, obj.Name, obj.ModTime, obj)
}
