package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	env := newTestEnv()
	req := validCreateReq("Phone X")
	req.Price = ptr(decimal.RequireFromString("199.99"))

	p, err := env.uc.CreateProduct(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Phone X", p.Title)
	assert.Equal(t, domain.SubCategorySmartphones, p.SubCategory)
	require.NotNil(t, p.Category)
	assert.Equal(t, domain.CategoryElectronics, *p.Category)
	assert.Equal(t, env.images.saved[0], p.ImageURL)
	assert.Equal(t, "199.99", p.Price.StringFixed(2))

	require.Len(t, env.outbox.events, 1)
	ev := env.outbox.events[0]
	assert.Equal(t, ProductCreated, ev.EventType)
	assert.Equal(t, p.ID, ev.ProductID)

	var payload ProductEvent
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, ev.EventID, payload.EventID)
	assert.Equal(t, "Phone X", payload.Product.Title)
}

func TestCreateProduct_WithoutImage(t *testing.T) {
	env := newTestEnv()
	req := validCreateReq("Phone X")
	req.Image = nil

	_, err := env.uc.CreateProduct(context.Background(), req)

	assert.ErrorIs(t, err, e.ErrImageRequired)
	assert.Equal(t, 0, env.repo.size())
	assert.Empty(t, env.images.saved)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv()
	req := validCreateReq("")
	req.AffiliateLink = "not a url"
	req.SourceWebsite = "EBAY"
	req.SEOTitle = string(make([]byte, 61))
	req.Price = ptr(decimal.RequireFromString("1.999"))

	_, err := env.uc.CreateProduct(context.Background(), req)

	require.ErrorIs(t, err, e.ErrValidation)
	var vErr *e.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Messages, "title should not be empty")
	assert.Contains(t, vErr.Messages, "affiliateLink must be a URL address")
	assert.Contains(t, vErr.Messages, "sourceWebsite must be one of the following values: AMAZON, FLIPKART")
	assert.Contains(t, vErr.Messages, "SEO_title must be shorter than or equal to 60 characters")
	assert.Contains(t, vErr.Messages, "price must have at most 2 decimal places")
	assert.Equal(t, 0, env.repo.size())
	assert.Empty(t, env.images.saved)
}

func TestCreateProduct_OptionalCategory(t *testing.T) {
	env := newTestEnv()
	req := validCreateReq("No category")
	req.Category = ""

	p, err := env.uc.CreateProduct(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, p.Category)
}

func TestCreateProduct_StoreFailureRemovesImage(t *testing.T) {
	env := newTestEnv()
	storeErr := errors.New("connection reset")
	env.repo.createErr = storeErr

	_, err := env.uc.CreateProduct(context.Background(), validCreateReq("a"))

	assert.ErrorIs(t, err, storeErr)
	require.Len(t, env.images.saved, 1)
	assert.Equal(t, env.images.saved, env.images.removed)
}

func TestCreateProduct_OutboxFailureRemovesImage(t *testing.T) {
	env := newTestEnv()
	env.outbox.createErr = errors.New("outbox down")

	_, err := env.uc.CreateProduct(context.Background(), validCreateReq("a"))

	assert.Error(t, err)
	assert.Equal(t, env.images.saved, env.images.removed)
}

func TestCreateProduct_WithoutOutbox(t *testing.T) {
	repo := newMemProductRepo()
	uc := NewProductUC(repo, nil, fakeTxManager{}, &fakeImages{}, logger.Nop{})

	_, err := uc.CreateProduct(context.Background(), validCreateReq("a"))

	assert.NoError(t, err)
	assert.Equal(t, 1, repo.size())
}

func TestUpdateProduct_NewImage(t *testing.T) {
	env := newTestEnv()
	created := env.create(t, validCreateReq("a"))

	updated, err := env.uc.UpdateProduct(context.Background(), created.ID, &UpdateProductReq{
		Title: ptr("renamed"),
		Image: NewProductImage([]byte("new"), "image/png", 3, "new.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.NotEqual(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, env.images.saved[1], updated.ImageURL)
	assert.Equal(t, []string{created.ImageURL}, env.images.removed)

	require.Len(t, env.outbox.events, 2)
	assert.Equal(t, ProductUpdated, env.outbox.events[1].EventType)
}

func TestUpdateProduct_KeepsImageWithoutUpload(t *testing.T) {
	env := newTestEnv()
	created := env.create(t, validCreateReq("a"))

	updated, err := env.uc.UpdateProduct(context.Background(), created.ID, &UpdateProductReq{
		SubCategory: ptr(string(domain.SubCategoryLaptops)),
		Price:       ptr(decimal.RequireFromString("10")),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, domain.SubCategoryLaptops, updated.SubCategory)
	assert.Empty(t, env.images.removed)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.UpdateProduct(context.Background(), "2b7b1b5e-7c43-4a8b-9f4e-3f1d0f7a9c11", &UpdateProductReq{
		Image: NewProductImage([]byte("new"), "image/png", 3, "new.png"),
	})

	assert.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Empty(t, env.images.saved)
}

func TestUpdateProduct_Validation(t *testing.T) {
	env := newTestEnv()
	created := env.create(t, validCreateReq("a"))

	_, err := env.uc.UpdateProduct(context.Background(), created.ID, &UpdateProductReq{
		SubCategory: ptr("TOASTERS"),
	})

	assert.ErrorIs(t, err, e.ErrValidation)
	assert.Equal(t, domain.SubCategorySmartphones, env.repo.get(created.ID).SubCategory)
}

func TestUpdateProduct_StoreFailureKeepsOldImage(t *testing.T) {
	env := newTestEnv()
	created := env.create(t, validCreateReq("a"))
	env.repo.updateErr = errors.New("deadlock")

	_, err := env.uc.UpdateProduct(context.Background(), created.ID, &UpdateProductReq{
		Image: NewProductImage([]byte("new"), "image/png", 3, "new.png"),
	})

	require.Error(t, err)
	assert.Equal(t, []string{env.images.saved[1]}, env.images.removed)
	assert.Equal(t, created.ImageURL, env.repo.get(created.ID).ImageURL)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv()
	created := env.create(t, validCreateReq("a"))

	deleted, err := env.uc.DeleteProduct(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, 0, env.repo.size())
	assert.Equal(t, []string{created.ImageURL}, env.images.removed)
	require.Len(t, env.outbox.events, 2)
	assert.Equal(t, ProductDeleted, env.outbox.events[1].EventType)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.DeleteProduct(context.Background(), "2b7b1b5e-7c43-4a8b-9f4e-3f1d0f7a9c11")
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = env.uc.DeleteProduct(context.Background(), "garbage")
	assert.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Empty(t, env.images.removed)
}
