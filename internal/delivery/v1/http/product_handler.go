package http

import (
	"net/http"

	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
	maxImageSize   int64
	verbose        bool
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger, maxImageSize int64, verbose bool) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		logger:         logger,
		maxImageSize:   maxImageSize,
		verbose:        verbose,
	}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Фильтрация, сортировка и постраничный вывод. Без параметров возвращает весь каталог одной страницей.
//	@Tags			products
//	@Produce		json
//	@Param			search			query		string	false	"Подстрока в названии или описании"
//	@Param			category		query		string	false	"Категория"
//	@Param			subCategory		query		string	false	"Подкатегория"
//	@Param			sourceWebsite	query		string	false	"Магазин"
//	@Param			deals			query		string	false	"Только акции (true)"
//	@Param			minPrice		query		number	false	"Минимальная цена"
//	@Param			maxPrice		query		number	false	"Максимальная цена"
//	@Param			sortBy			query		string	false	"Поле сортировки"
//	@Param			sortOrder		query		string	false	"asc | desc"
//	@Param			page			query		int		false	"Номер страницы"
//	@Param			limit			query		int		false	"Размер страницы (до 100)"
//	@Success		200				{object}	usecase.ListEnvelope
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, p.productUsecase.ListProducts(r.Context(), parseProductQuery(r)))
}

// listDeals
//
//	@Summary	Товары со скидкой
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	usecase.ListEnvelope
//	@Router		/products/deals [get]
func (p *ProductHandler) listDeals(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, p.productUsecase.ListDeals(r.Context(), parseProductQuery(r)))
}

// searchProducts
//
//	@Summary	Поиск по ключевому слову
//	@Tags		products
//	@Produce	json
//	@Param		q	query		string	true	"Ключевое слово"
//	@Success	200	{object}	usecase.ListEnvelope
//	@Router		/products/search [get]
func (p *ProductHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	WriteSuccess(w, http.StatusOK, p.productUsecase.SearchProducts(r.Context(), keyword, parseProductQuery(r)))
}

// searchSuggestions
//
//	@Summary	Подсказки названий
//	@Tags		products
//	@Produce	json
//	@Param		q	query		string	true	"Начало названия, от 2 символов"
//	@Success	200	{object}	usecase.DataEnvelope[[]string]
//	@Router		/products/search/suggestions [get]
func (p *ProductHandler) searchSuggestions(w http.ResponseWriter, r *http.Request) {
	titles := p.productUsecase.SearchSuggestions(r.Context(), r.URL.Query().Get("q"))
	WriteSuccess(w, http.StatusOK, usecase.NewDataEnvelope(titles))
}

// getCategories
//
//	@Summary	Количество товаров по категориям, подкатегориям и магазинам
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	usecase.DataEnvelope[usecase.CategoriesRes]
//	@Failure	500	{object}	ErrorResponse
//	@Router		/products/categories [get]
func (p *ProductHandler) getCategories(w http.ResponseWriter, r *http.Request) {
	res, err := p.productUsecase.GetCategories(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, usecase.NewDataEnvelope(res))
}

// getSubCategories
//
//	@Summary	Подкатегории внутри категории
//	@Tags		products
//	@Produce	json
//	@Param		category	path		string	true	"Категория"
//	@Success	200			{object}	usecase.DataEnvelope[[]usecase.SubCategoryCount]
//	@Failure	500			{object}	ErrorResponse
//	@Router		/products/subcategories/{category} [get]
func (p *ProductHandler) getSubCategories(w http.ResponseWriter, r *http.Request) {
	res, err := p.productUsecase.GetSubCategoriesByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, usecase.NewDataEnvelope(res))
}

// listSubCategories
//
//	@Summary	Все допустимые подкатегории
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	usecase.DataEnvelope[[]domain.SubCategory]
//	@Router		/subcategories [get]
func (p *ProductHandler) listSubCategories(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, usecase.NewDataEnvelope(p.productUsecase.ListSubCategories()))
}

// getProduct
//
//	@Summary	Товар по идентификатору
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	usecase.DataEnvelope[domain.Product]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := p.productUsecase.FindProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}
	if product == nil {
		WriteError(w, e.ErrProductNotFound, false)
		return
	}

	WriteSuccess(w, http.StatusOK, usecase.NewDataEnvelope(product))
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Принимает поля товара и один файл изображения в поле image или file.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title				formData	string	true	"Название"
//	@Param			description			formData	string	true	"Описание"
//	@Param			affiliateLink		formData	string	true	"Партнёрская ссылка"
//	@Param			SEO_title			formData	string	true	"SEO-заголовок, до 60 символов"
//	@Param			META_description	formData	string	true	"META-описание, до 140 символов"
//	@Param			sourceWebsite		formData	string	true	"Магазин"
//	@Param			category			formData	string	false	"Категория"
//	@Param			subCategory			formData	string	true	"Подкатегория"
//	@Param			deals				formData	bool	false	"Акция"
//	@Param			price				formData	number	false	"Цена"
//	@Param			image				formData	file	true	"Изображение"
//	@Success		201					{object}	domain.Product
//	@Failure		400					{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := p.parseMultipart(w, r); err != nil {
		p.fail(w, r, err)
		return
	}

	req, err := parseCreateForm(r.MultipartForm, p.maxImageSize)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, product)
}

// updateProduct
//
//	@Summary		Частичное обновление товара
//	@Description	Меняются только переданные поля. Новое изображение заменяет старое.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"ID товара"
//	@Param			image	formData	file	false	"Новое изображение"
//	@Success		200		{object}	domain.Product
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{id} [patch]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := p.parseMultipart(w, r); err != nil {
		p.fail(w, r, err)
		return
	}

	req, err := parseUpdateForm(r.MultipartForm, p.maxImageSize)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	domain.Product
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := p.productUsecase.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// adminListProducts
//
//	@Summary	Весь каталог без фильтров
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	usecase.ListEnvelope
//	@Router		/admin/products [get]
func (p *ProductHandler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, p.productUsecase.ListProducts(r.Context(), nil))
}

// adminGetProduct
//
//	@Summary	Товар по идентификатору без обёртки
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	domain.Product
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/products/{id} [get]
func (p *ProductHandler) adminGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := p.productUsecase.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// parseMultipart ограничивает тело запроса: файл плюс запас на текстовые поля.
func (p *ProductHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	const (
		formOverhead = 1 << 20
		maxMemory    = 8 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, p.maxImageSize+formOverhead)
	return ensureMultipartForm(r, maxMemory)
}

func (p *ProductHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		p.logger.Errorf(err, "%s %s", r.Method, r.URL.Path)
	} else {
		p.logger.Warnf("%d %s %s: %s", code, r.Method, r.URL.Path, err.Error())
	}

	WriteError(w, err, p.verbose)
}
