package http

import (
	"net/http"

	_ "github.com/DRSN-tech/pukkaprice-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type RouterCfg struct {
	CORSOrigins  []string
	SwaggerURL   string
	Env          string
	Verbose      bool // детали ошибок в ответах
	MaxImageSize int64
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
	cfg    RouterCfg
}

func NewRouter(router *chi.Mux, logger logger.Logger, cfg RouterCfg) *Router {
	return &Router{router: router, logger: logger, cfg: cfg}
}

func (r *Router) Init(prUC usecase.ProductUC, images ImageOpener) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.SwaggerURL), // ссылка на JSON
	))

	prHandler := NewProductHandler(prUC, r.logger, r.cfg.MaxImageSize, r.cfg.Verbose)
	sysHandler := NewSystemHandler(images, r.cfg.Env, r.logger)

	registerSystemRoutes(r.router, sysHandler)
	registerProductRoutes(r.router, prHandler)
	registerAdminRoutes(r.router, prHandler)
}

func registerSystemRoutes(router chi.Router, sysHandler *SystemHandler) {
	router.Get("/", sysHandler.index)
	router.Get("/health", sysHandler.health)
	router.Get("/uploads/{filename}", sysHandler.serveUpload)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Get("/subcategories", prHandler.listSubCategories)

	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Post("/", prHandler.createProduct)
		pr.Get("/categories", prHandler.getCategories)
		pr.Get("/deals", prHandler.listDeals)
		pr.Get("/subcategories/{category}", prHandler.getSubCategories)
		pr.Get("/search", prHandler.searchProducts)
		pr.Get("/search/suggestions", prHandler.searchSuggestions)
		pr.Get("/{id}", prHandler.getProduct)
		pr.Patch("/{id}", prHandler.updateProduct)
		pr.Delete("/{id}", prHandler.deleteProduct)
	})
}

func registerAdminRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/admin/products", func(ar chi.Router) {
		ar.Get("/", prHandler.adminListProducts)
		ar.Post("/", prHandler.createProduct)
		ar.Get("/{id}", prHandler.adminGetProduct)
		ar.Patch("/{id}", prHandler.updateProduct)
		ar.Delete("/{id}", prHandler.deleteProduct)
	})
}
