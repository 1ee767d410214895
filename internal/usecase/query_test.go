package usecase

import (
	"math"
	"testing"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuery_Defaults(t *testing.T) {
	q := NormalizeQuery(nil)

	assert.Equal(t, "", q.Search)
	assert.Nil(t, q.Deals)
	assert.Equal(t, domain.FieldCreatedAt, q.SortBy)
	assert.Equal(t, domain.SortDesc, q.SortOrder)
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	skip, ok := q.Skip()
	assert.True(t, ok)
	assert.Equal(t, 0, skip)
}

func TestNormalizeQuery_Limit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{"0", DefaultLimit},
		{"-3", DefaultLimit},
		{"1", 1},
		{"50", 50},
		{"100", 100},
		{"500", MaxLimit},
		{"99999999999999999999", MaxLimit},
		{"-99999999999999999999", DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(&RawProductQuery{Limit: tt.raw}).Limit)
		})
	}
}

func TestNormalizeQuery_Page(t *testing.T) {
	assert.Equal(t, 1, NormalizeQuery(&RawProductQuery{Page: "0"}).Page)
	assert.Equal(t, 1, NormalizeQuery(&RawProductQuery{Page: "-2"}).Page)
	assert.Equal(t, 1, NormalizeQuery(&RawProductQuery{Page: "x"}).Page)
	assert.Equal(t, 7, NormalizeQuery(&RawProductQuery{Page: "7"}).Page)

	assert.Equal(t, math.MaxInt, NormalizeQuery(&RawProductQuery{Page: "99999999999999999999"}).Page)
	assert.Equal(t, 1, NormalizeQuery(&RawProductQuery{Page: "-99999999999999999999"}).Page)

	q := NormalizeQuery(&RawProductQuery{Page: "3", Limit: "10"})
	skip, ok := q.Skip()
	assert.True(t, ok)
	assert.Equal(t, 20, skip)
}

func TestNormalizeQuery_Sort(t *testing.T) {
	q := NormalizeQuery(&RawProductQuery{SortBy: "dropTable", SortOrder: "sideways"})
	assert.Equal(t, domain.FieldCreatedAt, q.SortBy)
	assert.Equal(t, domain.SortDesc, q.SortOrder)

	q = NormalizeQuery(&RawProductQuery{SortBy: "title", SortOrder: "asc"})
	assert.Equal(t, domain.FieldTitle, q.SortBy)
	assert.Equal(t, domain.SortAsc, q.SortOrder)

	for _, field := range []string{"title", "createdAt", "updatedAt", "sourceWebsite", "category", "subCategory"} {
		assert.Equal(t, domain.ProductField(field), NormalizeQuery(&RawProductQuery{SortBy: field}).SortBy)
	}
}

func TestNormalizeQuery_Deals(t *testing.T) {
	q := NormalizeQuery(&RawProductQuery{Deals: "true"})
	require.NotNil(t, q.Deals)
	assert.True(t, *q.Deals)

	assert.Nil(t, NormalizeQuery(&RawProductQuery{Deals: "false"}).Deals)
	assert.Nil(t, NormalizeQuery(&RawProductQuery{Deals: "TRUE"}).Deals)
	assert.Nil(t, NormalizeQuery(&RawProductQuery{Deals: "1"}).Deals)
}

func TestNormalizeQuery_SearchAndPrice(t *testing.T) {
	q := NormalizeQuery(&RawProductQuery{Search: "  phone ", MinPrice: "10.5", MaxPrice: "oops"})

	assert.Equal(t, "phone", q.Search)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, "10.5", q.MinPrice.String())
	assert.Nil(t, q.MaxPrice)

	assert.Nil(t, NormalizeQuery(&RawProductQuery{MinPrice: "-1"}).MinPrice)
}

func TestRawProductQuery_HasParams(t *testing.T) {
	var nilQuery *RawProductQuery
	assert.False(t, nilQuery.HasParams())
	assert.False(t, (&RawProductQuery{}).HasParams())
	assert.False(t, (&RawProductQuery{Search: "   "}).HasParams())
	assert.True(t, (&RawProductQuery{Page: "1"}).HasParams())
	assert.True(t, (&RawProductQuery{Deals: "false"}).HasParams())
}

func TestProductQuery_Echo(t *testing.T) {
	q := NormalizeQuery(&RawProductQuery{Search: " tv ", Deals: "false", SortBy: "nope", MinPrice: "5"})
	f := q.Echo()

	assert.Equal(t, "tv", f.Search)
	assert.Equal(t, "false", f.Deals)
	assert.Equal(t, "createdAt", f.SortBy)
	assert.Equal(t, "DESC", f.SortOrder)
	assert.Equal(t, "5", f.MinPrice)
	assert.Empty(t, f.MaxPrice)
}
