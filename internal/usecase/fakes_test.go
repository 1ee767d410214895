package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memProductRepo — хранилище товаров в памяти, вычисляющее предикаты.
type memProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
	clock    time.Time
	calls    atomic.Int64

	findErr   error
	countErr  error
	createErr error
	updateErr error
	groupErr  error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		products: make(map[string]domain.Product),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memProductRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	m.calls.Add(1)
	if m.createErr != nil {
		return nil, m.createErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := *product
	p.ID = uuid.NewString()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = p

	return &p, nil
}

func (m *memProductRepo) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	m.calls.Add(1)
	if m.updateErr != nil {
		return nil, m.updateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[product.ID]; !ok {
		return nil, e.ErrProductNotFound
	}
	p := *product
	p.UpdatedAt = m.tick()
	m.products[p.ID] = p

	return &p, nil
}

func (m *memProductRepo) Delete(_ context.Context, id string) (*domain.Product, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	delete(m.products, id)

	return &p, nil
}

func (m *memProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	return &p, nil
}

func (m *memProductRepo) Find(_ context.Context, query domain.FindQuery) ([]domain.Product, error) {
	m.calls.Add(1)
	if m.findErr != nil {
		return nil, m.findErr
	}

	res := m.filter(query.Where)
	slices.SortStableFunc(res, func(a, b domain.Product) int {
		c := compareField(a, b, query.OrderBy.Field)
		if query.OrderBy.Order == domain.SortDesc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	})

	if query.Skip >= len(res) {
		return []domain.Product{}, nil
	}
	res = res[query.Skip:]
	if query.Take > 0 && len(res) > query.Take {
		res = res[:query.Take]
	}

	return res, nil
}

func (m *memProductRepo) Count(_ context.Context, where domain.Predicate) (int64, error) {
	m.calls.Add(1)
	if m.countErr != nil {
		return 0, m.countErr
	}

	return int64(len(m.filter(where))), nil
}

func (m *memProductRepo) GroupCount(_ context.Context, field domain.ProductField, where domain.Predicate, order domain.GroupOrder) ([]domain.GroupCount, error) {
	m.calls.Add(1)
	if m.groupErr != nil {
		return nil, m.groupErr
	}

	counts := make(map[string]int64)
	var nullCount int64
	for _, p := range m.filter(where) {
		v := fieldValue(p, field)
		if v == nil {
			nullCount++
			continue
		}
		counts[fmt.Sprint(v)]++
	}

	res := make([]domain.GroupCount, 0, len(counts)+1)
	if nullCount > 0 {
		res = append(res, domain.GroupCount{Count: nullCount})
	}
	for k, c := range counts {
		res = append(res, domain.GroupCount{Value: &k, Count: c})
	}
	slices.SortFunc(res, func(a, b domain.GroupCount) int {
		if order == domain.GroupByCountDesc {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
		}
		return strings.Compare(deref(a.Value), deref(b.Value))
	})

	return res, nil
}

func (m *memProductRepo) DistinctTitles(_ context.Context, where domain.Predicate, limit int) ([]string, error) {
	m.calls.Add(1)
	if m.findErr != nil {
		return nil, m.findErr
	}

	var titles []string
	for _, p := range m.filter(where) {
		if !slices.Contains(titles, p.Title) {
			titles = append(titles, p.Title)
		}
	}
	slices.Sort(titles)
	if len(titles) > limit {
		titles = titles[:limit]
	}

	return titles, nil
}

func (m *memProductRepo) filter(where domain.Predicate) []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if matches(where, p) {
			res = append(res, p)
		}
	}
	return res
}

func (m *memProductRepo) get(id string) domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id]
}

func (m *memProductRepo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

func matches(where domain.Predicate, p domain.Product) bool {
	switch w := where.(type) {
	case nil, domain.MatchAll:
		return true
	case domain.And:
		for _, c := range w.Clauses {
			if !matches(c, p) {
				return false
			}
		}
		return true
	case domain.Or:
		for _, c := range w.Clauses {
			if matches(c, p) {
				return true
			}
		}
		return false
	case domain.Compare:
		return compare(w, fieldValue(p, w.Field))
	default:
		panic(fmt.Sprintf("unexpected predicate %T", where))
	}
}

func compare(c domain.Compare, v any) bool {
	if v == nil {
		return false
	}

	switch c.Op {
	case domain.OpEq:
		return fmt.Sprint(v) == fmt.Sprint(c.Value)
	case domain.OpEqFold:
		return strings.EqualFold(fmt.Sprint(v), fmt.Sprint(c.Value))
	case domain.OpContains:
		return strings.Contains(fmt.Sprint(v), fmt.Sprint(c.Value))
	case domain.OpContainsFold:
		return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(c.Value)))
	case domain.OpGte:
		return v.(decimal.Decimal).GreaterThanOrEqual(c.Value.(decimal.Decimal))
	case domain.OpLte:
		return v.(decimal.Decimal).LessThanOrEqual(c.Value.(decimal.Decimal))
	default:
		panic(fmt.Sprintf("unexpected operator %s", c.Op))
	}
}

func fieldValue(p domain.Product, field domain.ProductField) any {
	switch field {
	case domain.FieldID:
		return p.ID
	case domain.FieldTitle:
		return p.Title
	case domain.FieldDescription:
		return p.Description
	case domain.FieldSourceWebsite:
		return string(p.SourceWebsite)
	case domain.FieldCategory:
		if p.Category == nil {
			return nil
		}
		return string(*p.Category)
	case domain.FieldSubCategory:
		return string(p.SubCategory)
	case domain.FieldDeals:
		return p.Deals
	case domain.FieldPrice:
		if p.Price == nil {
			return nil
		}
		return *p.Price
	case domain.FieldCreatedAt:
		return p.CreatedAt
	case domain.FieldUpdatedAt:
		return p.UpdatedAt
	default:
		panic(fmt.Sprintf("unexpected field %s", field))
	}
}

func compareField(a, b domain.Product, field domain.ProductField) int {
	switch field {
	case domain.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case domain.FieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(fmt.Sprint(fieldValue(a, field)), fmt.Sprint(fieldValue(b, field)))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeImages запоминает сохранённые и удалённые изображения.
type fakeImages struct {
	mu      sync.Mutex
	seq     int
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeImages) SaveImage(_ context.Context, image *ProductImage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.seq++
	url := fmt.Sprintf("http://localhost:3001/uploads/%d-%s", f.seq, image.Name)
	f.saved = append(f.saved, url)

	return url, nil
}

func (f *fakeImages) RemoveImage(imageURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, imageURL)
}

func (f *fakeImages) OpenImage(context.Context, string) (*domain.ImageObject, error) {
	return nil, e.ErrImageNotFound
}

type fakeOutbox struct {
	mu        sync.Mutex
	events    []OutboxEvent
	createErr error
}

func (f *fakeOutbox) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	ev := *event
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, ev)

	return &ev, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutbox) ResetStuck(context.Context) (int64, error) { return 0, nil }
