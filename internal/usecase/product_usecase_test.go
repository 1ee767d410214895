package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	uc     *ProductUseCase
	repo   *memProductRepo
	images *fakeImages
	outbox *fakeOutbox
}

func newTestEnv() *testEnv {
	repo := newMemProductRepo()
	images := &fakeImages{}
	outbox := &fakeOutbox{}

	return &testEnv{
		uc:     NewProductUC(repo, outbox, fakeTxManager{}, images, logger.Nop{}),
		repo:   repo,
		images: images,
		outbox: outbox,
	}
}

func validCreateReq(title string) *CreateProductReq {
	return &CreateProductReq{
		Title:           title,
		Description:     "Description of " + title,
		AffiliateLink:   "https://amzn.to/abc",
		SEOTitle:        title,
		MetaDescription: "Buy " + title,
		SourceWebsite:   string(domain.SourceAmazon),
		Category:        string(domain.CategoryElectronics),
		SubCategory:     string(domain.SubCategorySmartphones),
		Image:           NewProductImage([]byte("img"), "image/png", 3, "img.png"),
	}
}

func (env *testEnv) create(t *testing.T, req *CreateProductReq) *domain.Product {
	t.Helper()
	p, err := env.uc.CreateProduct(context.Background(), req)
	require.NoError(t, err)
	return p
}

func ids(products []domain.Product) []string {
	res := make([]string, 0, len(products))
	for _, p := range products {
		res = append(res, p.ID)
	}
	return res
}

func TestListProducts_FastPath(t *testing.T) {
	env := newTestEnv()
	first := env.create(t, validCreateReq("First"))
	second := env.create(t, validCreateReq("Second"))

	for _, raw := range []*RawProductQuery{nil, {}} {
		res := env.uc.ListProducts(context.Background(), raw)

		assert.True(t, res.Success)
		assert.Equal(t, []string{second.ID, first.ID}, ids(res.Data))
		assert.Equal(t, SinglePagePagination(2), res.Pagination)
		assert.Equal(t, Filters{}, res.Filters)
	}
}

func TestListProducts_Paginated(t *testing.T) {
	env := newTestEnv()
	for _, title := range []string{"c", "a", "e", "b", "d"} {
		env.create(t, validCreateReq(title))
	}

	res := env.uc.ListProducts(context.Background(), &RawProductQuery{SortBy: "title", SortOrder: "asc", Page: "2", Limit: "2"})

	require.Len(t, res.Data, 2)
	assert.Equal(t, "c", res.Data[0].Title)
	assert.Equal(t, "d", res.Data[1].Title)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 5, ItemsPerPage: 2, HasNextPage: true, HasPrevPage: true}, res.Pagination)
	assert.Equal(t, "title", res.Filters.SortBy)
	assert.Equal(t, "ASC", res.Filters.SortOrder)
}

func TestListProducts_PageBeyondLast(t *testing.T) {
	env := newTestEnv()
	env.create(t, validCreateReq("only"))

	res := env.uc.ListProducts(context.Background(), &RawProductQuery{Page: "5"})

	assert.True(t, res.Success)
	assert.Empty(t, res.Data)
	assert.NotNil(t, res.Data)
	assert.Equal(t, int64(1), res.Pagination.TotalItems)
	assert.False(t, res.Pagination.HasNextPage)
	assert.True(t, res.Pagination.HasPrevPage)
}

func TestListProducts_PageOverflow(t *testing.T) {
	env := newTestEnv()
	for _, title := range []string{"a", "b", "c"} {
		env.create(t, validCreateReq(title))
	}

	for _, page := range []string{"9223372036854775807", "461168601842738791", "99999999999999999999"} {
		t.Run(page, func(t *testing.T) {
			res := env.uc.ListProducts(context.Background(), &RawProductQuery{Page: page})

			assert.True(t, res.Success)
			assert.NotNil(t, res.Data)
			assert.Empty(t, res.Data)
			assert.Equal(t, int64(3), res.Pagination.TotalItems)
			assert.Equal(t, 1, res.Pagination.TotalPages)
			assert.False(t, res.Pagination.HasNextPage)
			assert.True(t, res.Pagination.HasPrevPage)
		})
	}
}

func TestListProducts_LimitClamped(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 3; i++ {
		env.create(t, validCreateReq("p"))
	}

	res := env.uc.ListProducts(context.Background(), &RawProductQuery{Limit: "500", SortBy: "dropTable"})

	assert.Equal(t, MaxLimit, res.Pagination.ItemsPerPage)
	assert.Len(t, res.Data, 3)
	assert.Equal(t, "createdAt", res.Filters.SortBy)
}

func TestListProducts_Deals(t *testing.T) {
	env := newTestEnv()
	plain := env.create(t, validCreateReq("plain"))
	dealReq := validCreateReq("deal")
	dealReq.Deals = true
	deal := env.create(t, dealReq)

	all := env.uc.ListProducts(context.Background(), &RawProductQuery{Page: "1"})
	assert.ElementsMatch(t, []string{plain.ID, deal.ID}, ids(all.Data))

	onlyDeals := env.uc.ListProducts(context.Background(), &RawProductQuery{Deals: "true"})
	assert.Equal(t, []string{deal.ID}, ids(onlyDeals.Data))

	notApplied := env.uc.ListProducts(context.Background(), &RawProductQuery{Deals: "false"})
	assert.ElementsMatch(t, []string{plain.ID, deal.ID}, ids(notApplied.Data))
	assert.Equal(t, "false", notApplied.Filters.Deals)

	forced := env.uc.ListDeals(context.Background(), &RawProductQuery{Deals: "false"})
	assert.Equal(t, []string{deal.ID}, ids(forced.Data))
}

func TestListProducts_EmptySearchEqualsNoSearch(t *testing.T) {
	env := newTestEnv()
	env.create(t, validCreateReq("a"))
	env.create(t, validCreateReq("b"))

	withEmpty := env.uc.ListProducts(context.Background(), &RawProductQuery{Search: "", Page: "1"})
	without := env.uc.ListProducts(context.Background(), &RawProductQuery{Page: "1"})

	assert.Equal(t, ids(without.Data), ids(withEmpty.Data))
	assert.Equal(t, without.Pagination, withEmpty.Pagination)
}

func TestListProducts_SearchAndCategoryCasing(t *testing.T) {
	env := newTestEnv()
	phone := env.create(t, validCreateReq("Phone X"))
	laptopReq := validCreateReq("Laptop")
	laptopReq.Description = "Great for PHONE calls"
	laptop := env.create(t, laptopReq)
	env.create(t, validCreateReq("Tablet"))

	res := env.uc.ListProducts(context.Background(), &RawProductQuery{Search: "phone", Category: "electronics"})

	assert.ElementsMatch(t, []string{phone.ID, laptop.ID}, ids(res.Data))
	assert.Equal(t, int64(2), res.Pagination.TotalItems)
}

func TestListProducts_PriceRange(t *testing.T) {
	env := newTestEnv()
	cheap := validCreateReq("cheap")
	cheap.Price = ptr(decimal.RequireFromString("10.00"))
	env.create(t, cheap)
	mid := validCreateReq("mid")
	mid.Price = ptr(decimal.RequireFromString("99.99"))
	midProduct := env.create(t, mid)
	env.create(t, validCreateReq("no price"))

	res := env.uc.ListProducts(context.Background(), &RawProductQuery{MinPrice: "50", MaxPrice: "100"})

	assert.Equal(t, []string{midProduct.ID}, ids(res.Data))
}

func TestListProducts_DegradesOnStoreFailure(t *testing.T) {
	env := newTestEnv()
	env.repo.findErr = errors.New("column does not exist")

	raw := &RawProductQuery{Search: "x", SortBy: "weird"}
	res := env.uc.ListProducts(context.Background(), raw)

	assert.True(t, res.Success)
	assert.Empty(t, res.Data)
	assert.Equal(t, EmptyPagination(), res.Pagination)
	assert.Equal(t, raw.Echo(), res.Filters)

	fast := env.uc.ListProducts(context.Background(), nil)
	assert.True(t, fast.Success)
	assert.Equal(t, Filters{}, fast.Filters)
}

func TestListProducts_DegradesOnCountFailure(t *testing.T) {
	env := newTestEnv()
	env.create(t, validCreateReq("a"))
	env.repo.countErr = errors.New("timeout")

	res := env.uc.ListProducts(context.Background(), &RawProductQuery{Page: "1"})

	assert.True(t, res.Success)
	assert.Empty(t, res.Data)
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv()
	phone := env.create(t, validCreateReq("Phone X"))
	env.create(t, validCreateReq("Laptop"))

	res := env.uc.SearchProducts(context.Background(), "PHONE", &RawProductQuery{Category: "ELECTRONICS"})
	assert.Equal(t, []string{phone.ID}, ids(res.Data))
	assert.Equal(t, "PHONE", res.Filters.Keyword)

	// Категория в поиске сравнивается точно
	res = env.uc.SearchProducts(context.Background(), "phone", &RawProductQuery{Category: "electronics"})
	assert.Empty(t, res.Data)
}

func TestSearchProducts_EmptyKeyword(t *testing.T) {
	env := newTestEnv()
	env.create(t, validCreateReq("a"))
	before := env.repo.calls.Load()

	res := env.uc.SearchProducts(context.Background(), "  ", nil)

	assert.True(t, res.Success)
	assert.Empty(t, res.Data)
	assert.Equal(t, Filters{}, res.Filters)
	assert.Equal(t, before, env.repo.calls.Load())
}

func TestSearchSuggestions(t *testing.T) {
	env := newTestEnv()
	for _, title := range []string{"Phone X", "Phone A", "phone lower", "Phone X", "Laptop"} {
		env.create(t, validCreateReq(title))
	}

	before := env.repo.calls.Load()
	assert.Equal(t, []string{}, env.uc.SearchSuggestions(context.Background(), "P"))
	assert.Equal(t, []string{}, env.uc.SearchSuggestions(context.Background(), ""))
	assert.Equal(t, before, env.repo.calls.Load())

	assert.Equal(t, []string{"Phone A", "Phone X"}, env.uc.SearchSuggestions(context.Background(), "Ph"))

	env.repo.findErr = errors.New("boom")
	assert.Equal(t, []string{}, env.uc.SearchSuggestions(context.Background(), "Ph"))
}

func TestSearchSuggestions_Limit(t *testing.T) {
	env := newTestEnv()
	for _, c := range "abcdefghijkl" {
		env.create(t, validCreateReq("item "+string(c)))
	}

	got := env.uc.SearchSuggestions(context.Background(), "item")

	require.Len(t, got, maxSuggestions)
	assert.Equal(t, "item a", got[0])
}

func TestGetCategories(t *testing.T) {
	env := newTestEnv()
	env.create(t, validCreateReq("a"))
	flip := validCreateReq("b")
	flip.SourceWebsite = string(domain.SourceFlipkart)
	env.create(t, flip)
	flip2 := validCreateReq("c")
	flip2.SourceWebsite = string(domain.SourceFlipkart)
	flip2.SubCategory = string(domain.SubCategoryLaptops)
	env.create(t, flip2)

	res, err := env.uc.GetCategories(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Categories, 1)
	assert.Equal(t, int64(3), res.Categories[0].Count)
	require.Len(t, res.SourceWebsites, 2)
	assert.Equal(t, "FLIPKART", *res.SourceWebsites[0].SourceWebsite)
	assert.Equal(t, int64(2), res.SourceWebsites[0].Count)
	assert.Len(t, res.SubCategories, 2)

	env.repo.groupErr = errors.New("boom")
	_, err = env.uc.GetCategories(context.Background())
	assert.Error(t, err)
}

func TestGetSubCategoriesByCategory(t *testing.T) {
	env := newTestEnv()
	env.create(t, validCreateReq("a"))
	env.create(t, validCreateReq("b"))
	laptop := validCreateReq("c")
	laptop.SubCategory = string(domain.SubCategoryLaptops)
	env.create(t, laptop)

	res, err := env.uc.GetSubCategoriesByCategory(context.Background(), "electronics")
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.Equal(t, "SMARTPHONES", *res[0].SubCategory)
	assert.Equal(t, int64(2), res[0].Count)

	res, err = env.uc.GetSubCategoriesByCategory(context.Background(), "GROCERY")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv()
	created := env.create(t, validCreateReq("a"))

	got, err := env.uc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = env.uc.GetProduct(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = env.uc.GetProduct(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	found, err := env.uc.FindProduct(context.Background(), "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

// Сценарий: создание, фильтрация, перевод в deals без смены изображения.
func TestCatalogScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := validCreateReq("Phone X")
	req.Deals = false
	a := env.create(t, req)

	bySub := env.uc.ListProducts(ctx, &RawProductQuery{SubCategory: "SMARTPHONES"})
	assert.Equal(t, []string{a.ID}, ids(bySub.Data))

	deals := env.uc.ListProducts(ctx, &RawProductQuery{Deals: "true"})
	assert.Empty(t, deals.Data)

	_, err := env.uc.UpdateProduct(ctx, a.ID, &UpdateProductReq{Deals: ptr(true)})
	require.NoError(t, err)

	deals = env.uc.ListDeals(ctx, nil)
	require.Len(t, deals.Data, 1)
	assert.Equal(t, a.ID, deals.Data[0].ID)
	assert.Equal(t, a.ImageURL, deals.Data[0].ImageURL)
	assert.Empty(t, env.images.removed)
}

func ptr[T any](v T) *T {
	return &v
}
