package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllOf(t *testing.T) {
	title := Eq(FieldTitle, "Phone X")
	deals := Eq(FieldDeals, true)

	assert.Equal(t, MatchAll{}, AllOf())
	assert.Equal(t, MatchAll{}, AllOf(nil, MatchAll{}))
	assert.Equal(t, title, AllOf(MatchAll{}, title))
	assert.Equal(t, And{Clauses: []Predicate{title, deals}}, AllOf(title, nil, deals))
}

func TestAnyOf(t *testing.T) {
	a := Contains(FieldTitle, "x")
	b := Contains(FieldDescription, "x")

	assert.Equal(t, MatchAll{}, AnyOf())
	assert.Equal(t, MatchAll{}, AnyOf(a, MatchAll{}))
	assert.Equal(t, a, AnyOf(a))
	assert.Equal(t, Or{Clauses: []Predicate{a, b}}, AnyOf(a, b))
}

func TestIsMatchAll(t *testing.T) {
	assert.True(t, IsMatchAll(nil))
	assert.True(t, IsMatchAll(And{Clauses: []Predicate{MatchAll{}}}))
	assert.False(t, IsMatchAll(Eq(FieldDeals, true)))
	assert.True(t, IsMatchAll(Or{Clauses: []Predicate{Eq(FieldDeals, true), MatchAll{}}}))
	assert.False(t, IsMatchAll(Or{Clauses: []Predicate{Eq(FieldDeals, true)}}))
}

func TestEnums(t *testing.T) {
	assert.True(t, SourceAmazon.IsValid())
	assert.False(t, SourceWebsite("EBAY").IsValid())
	assert.True(t, CategoryElectronics.IsValid())
	assert.False(t, Category("electronics").IsValid())
	assert.True(t, SubCategorySmartphones.IsValid())
	assert.Len(t, SubCategories(), 10)
}
