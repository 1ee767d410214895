package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/pukkaprice-backend/internal/domain"
	"github.com/DRSN-tech/pukkaprice-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumnsList = `id, title, description, image_url, affiliate_link, seo_title, meta_description,
	source_website, category, sub_category, deals, price_minor, created_at, updated_at`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
// Внутри TxManager.Do запросы выполняются в транзакции из контекста.
type ProductRepo struct {
	pool   *pgxpool.Pool
	conv   converter.ProductConverter
	getter *trmpgx.CtxGetter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool:   pool,
		conv:   conv,
		getter: trmpgx.DefaultCtxGetter,
	}
}

func (p *ProductRepo) db(ctx context.Context) trmpgx.Tr {
	return p.getter.DefaultTrOrDB(ctx, p.pool)
}

// Create добавляет товар. id и временные метки выставляет база.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m := p.conv.ToModel(product)
	query := `
		INSERT INTO products (
			title, description, image_url, affiliate_link, seo_title, meta_description,
			source_website, category, sub_category, deals, price_minor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumnsList

	row := p.db(ctx).QueryRow(ctx, query,
		m.Title, m.Description, m.ImageURL, m.AffiliateLink, m.SEOTitle, m.MetaDescription,
		m.SourceWebsite, m.Category, m.SubCategory, m.Deals, m.PriceMinor,
	)

	created, err := scanProduct(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(created), nil
}

// Update перезаписывает изменяемые поля товара и обновляет updated_at.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m := p.conv.ToModel(product)
	query := `
		UPDATE products SET
			title = $2,
			description = $3,
			image_url = $4,
			affiliate_link = $5,
			seo_title = $6,
			meta_description = $7,
			source_website = $8,
			category = $9,
			sub_category = $10,
			deals = $11,
			price_minor = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumnsList

	row := p.db(ctx).QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.ImageURL, m.AffiliateLink, m.SEOTitle, m.MetaDescription,
		m.SourceWebsite, m.Category, m.SubCategory, m.Deals, m.PriceMinor,
	)

	updated, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(updated), nil
}

// Delete удаляет товар и возвращает удалённую запись.
func (p *ProductRepo) Delete(ctx context.Context, id string) (*domain.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumnsList

	deleted, err := scanProduct(p.db(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(deleted), nil
}

func (p *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumnsList + ` FROM products WHERE id = $1`

	found, err := scanProduct(p.db(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(found), nil
}

// Find выбирает товары по условию с сортировкой и пагинацией.
func (p *ProductRepo) Find(ctx context.Context, q domain.FindQuery) ([]domain.Product, error) {
	query, args, err := buildFindQuery(q)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	rows, err := p.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]converter.ProductModel, 0)
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

func (p *ProductRepo) Count(ctx context.Context, where domain.Predicate) (int64, error) {
	b := &sqlBuilder{}
	cond, err := b.where(where)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	var total int64
	if err := p.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM products`+cond, b.args...).Scan(&total); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return total, nil
}

// GroupCount считает товары по значениям текстового поля.
func (p *ProductRepo) GroupCount(ctx context.Context, field domain.ProductField, where domain.Predicate, order domain.GroupOrder) ([]domain.GroupCount, error) {
	query, args, err := buildGroupCountQuery(field, where, order)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	rows, err := p.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	res := make([]domain.GroupCount, 0)
	for rows.Next() {
		var g domain.GroupCount
		if err := rows.Scan(&g.Value, &g.Count); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return res, nil
}

// DistinctTitles возвращает различные названия по возрастанию.
func (p *ProductRepo) DistinctTitles(ctx context.Context, where domain.Predicate, limit int) ([]string, error) {
	b := &sqlBuilder{}
	cond, err := b.where(where)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	query := `SELECT DISTINCT title FROM products` + cond + ` ORDER BY title ASC LIMIT ` + b.arg(limit)

	rows, err := p.db(ctx).Query(ctx, query, b.args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return titles, nil
}

func buildFindQuery(q domain.FindQuery) (string, []any, error) {
	b := &sqlBuilder{}
	cond, err := b.where(q.Where)
	if err != nil {
		return "", nil, err
	}

	order, err := orderBy(q.OrderBy)
	if err != nil {
		return "", nil, err
	}

	query := `SELECT ` + productColumnsList + ` FROM products` + cond + order
	if q.Skip > 0 {
		query += " OFFSET " + b.arg(q.Skip)
	}
	if q.Take > 0 {
		query += " LIMIT " + b.arg(q.Take)
	}

	return query, b.args, nil
}

func buildGroupCountQuery(field domain.ProductField, where domain.Predicate, order domain.GroupOrder) (string, []any, error) {
	if !groupableFields[field] {
		return "", nil, fmt.Errorf("%w: cannot group by %q", e.ErrUnknownField, field)
	}
	col, err := column(field)
	if err != nil {
		return "", nil, err
	}

	b := &sqlBuilder{}
	cond, err := b.where(where)
	if err != nil {
		return "", nil, err
	}

	orderClause := " ORDER BY " + col + " ASC NULLS FIRST"
	if order == domain.GroupByCountDesc {
		orderClause = " ORDER BY COUNT(*) DESC, " + col + " ASC NULLS FIRST"
	}

	query := "SELECT " + col + ", COUNT(*) FROM products" + cond + " GROUP BY " + col + orderClause

	return query, b.args, nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var m converter.ProductModel
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.AffiliateLink, &m.SEOTitle, &m.MetaDescription,
		&m.SourceWebsite, &m.Category, &m.SubCategory, &m.Deals, &m.PriceMinor, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ImageURLs возвращает ссылки на изображения всех товаров.
func (p *ProductRepo) ImageURLs(ctx context.Context) ([]string, error) {
	rows, err := p.db(ctx).Query(ctx, `SELECT image_url FROM products WHERE image_url <> ''`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return urls, nil
}
