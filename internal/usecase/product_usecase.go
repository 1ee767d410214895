package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ProductUseCase реализует чтение каталога и управление товарами.
type ProductUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository // nil, если публикация событий отключена
	trManager   TxManager
	imagesInfra ImagesInfra
	validator   *productValidator
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	trManager TxManager,
	imagesInfra ImagesInfra,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		trManager:   trManager,
		imagesInfra: imagesInfra,
		validator:   newProductValidator(),
		logger:      logger,
	}
}

// ListProducts возвращает страницу каталога по фильтрам.
// Без параметров отдаёт все товары от новых к старым одной страницей.
// Ошибки чтения не пробрасываются: клиент получает пустой ответ с success=true.
func (p *ProductUseCase) ListProducts(ctx context.Context, raw *RawProductQuery) *ListEnvelope {
	const op = "ProductUseCase.ListProducts"

	if !raw.HasParams() {
		return p.listAll(ctx)
	}

	q := NormalizeQuery(raw)
	res, err := p.findPage(ctx, q, BuildListPredicate(q), q.Echo())
	if err != nil {
		p.logger.Errorf(e.Wrap(op, err), "Failed to list products")
		return DegradedListEnvelope(raw.Echo())
	}

	return res
}

// ListDeals — листинг с принудительно включённым фильтром deals.
func (p *ProductUseCase) ListDeals(ctx context.Context, raw *RawProductQuery) *ListEnvelope {
	q := RawProductQuery{}
	if raw != nil {
		q = *raw
	}
	q.Deals = "true"

	return p.ListProducts(ctx, &q)
}

// SearchProducts ищет keyword в названии и описании с учётом остальных фильтров.
// Пустое ключевое слово даёт пустой ответ без обращения к хранилищу.
func (p *ProductUseCase) SearchProducts(ctx context.Context, keyword string, raw *RawProductQuery) *ListEnvelope {
	const op = "ProductUseCase.SearchProducts"

	if strings.TrimSpace(keyword) == "" {
		return DegradedListEnvelope(raw.Echo())
	}

	q := NormalizeQuery(raw)
	filters := q.Echo()
	filters.Search = ""
	filters.Keyword = keyword

	res, err := p.findPage(ctx, q, BuildSearchPredicate(keyword, q), filters)
	if err != nil {
		p.logger.Errorf(e.Wrap(op, err), "Failed to search products. keyword: %s", keyword)
		degraded := raw.Echo()
		degraded.Keyword = keyword
		return DegradedListEnvelope(degraded)
	}

	return res
}

// SearchSuggestions возвращает до 10 различных названий, содержащих query.
func (p *ProductUseCase) SearchSuggestions(ctx context.Context, query string) []string {
	const op = "ProductUseCase.SearchSuggestions"

	if utf8.RuneCountInString(query) < minSuggestionLength {
		return []string{}
	}

	titles, err := p.productRepo.DistinctTitles(ctx, domain.Contains(domain.FieldTitle, query), maxSuggestions)
	if err != nil {
		p.logger.Errorf(e.Wrap(op, err), "Failed to get search suggestions")
		return []string{}
	}
	if titles == nil {
		return []string{}
	}

	return titles
}

// GetCategories возвращает количества товаров по категориям, подкатегориям и магазинам.
func (p *ProductUseCase) GetCategories(ctx context.Context) (*CategoriesRes, error) {
	const op = "ProductUseCase.GetCategories"

	var categories, subCategories, sources []domain.GroupCount

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = p.productRepo.GroupCount(gCtx, domain.FieldCategory, domain.MatchAll{}, domain.GroupByValue)
		return err
	})
	g.Go(func() (err error) {
		subCategories, err = p.productRepo.GroupCount(gCtx, domain.FieldSubCategory, domain.MatchAll{}, domain.GroupByValue)
		return err
	})
	g.Go(func() (err error) {
		sources, err = p.productRepo.GroupCount(gCtx, domain.FieldSourceWebsite, domain.MatchAll{}, domain.GroupByCountDesc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &CategoriesRes{
		Categories:     newCategoryCounts(categories),
		SubCategories:  newSubCategoryCounts(subCategories),
		SourceWebsites: newSourceWebsiteCounts(sources),
	}, nil
}

// GetSubCategoriesByCategory возвращает подкатегории категории с количеством товаров,
// по убыванию количества. Категория сравнивается без учёта регистра.
func (p *ProductUseCase) GetSubCategoriesByCategory(ctx context.Context, category string) ([]SubCategoryCount, error) {
	const op = "ProductUseCase.GetSubCategoriesByCategory"

	groups, err := p.productRepo.GroupCount(ctx, domain.FieldSubCategory, CategoryMatch(category), domain.GroupByCountDesc)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return newSubCategoryCounts(groups), nil
}

// ListSubCategories возвращает фиксированный список подкатегорий.
func (p *ProductUseCase) ListSubCategories() []domain.SubCategory {
	return domain.SubCategories()
}

// GetProduct возвращает товар по id или e.ErrProductNotFound.
func (p *ProductUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	product, err := p.FindProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if product == nil {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	return product, nil
}

// FindProduct возвращает товар по id или nil, если его нет.
// Некорректный id считается отсутствующим товаром.
func (p *ProductUseCase) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "ProductUseCase.FindProduct"

	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	product, err := p.productRepo.FindByID(ctx, id)
	if errors.Is(err, e.ErrProductNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

// listAll — быстрый путь листинга без параметров.
func (p *ProductUseCase) listAll(ctx context.Context) *ListEnvelope {
	const op = "ProductUseCase.listAll"

	products, err := p.productRepo.Find(ctx, domain.FindQuery{
		Where:   domain.MatchAll{},
		OrderBy: domain.OrderBy{Field: domain.FieldCreatedAt, Order: domain.SortDesc},
	})
	if err != nil {
		p.logger.Errorf(e.Wrap(op, err), "Failed to list all products")
		return DegradedListEnvelope(Filters{})
	}

	return NewListEnvelope(products, SinglePagePagination(len(products)), Filters{})
}

// findPage параллельно выбирает страницу и считает общее количество по одному условию.
func (p *ProductUseCase) findPage(ctx context.Context, q *ProductQuery, where domain.Predicate, filters Filters) (*ListEnvelope, error) {
	var (
		products []domain.Product
		total    int64
	)

	skip, ok := q.Skip()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if !ok {
			products = []domain.Product{}
			return nil
		}
		products, err = p.productRepo.Find(gCtx, domain.FindQuery{
			Where:   where,
			OrderBy: q.OrderBy(),
			Skip:    skip,
			Take:    q.Limit,
		})
		return err
	})
	g.Go(func() (err error) {
		total, err = p.productRepo.Count(gCtx, where)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewListEnvelope(products, NewPagination(q.Page, q.Limit, total), filters), nil
}
