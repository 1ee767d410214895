package pgdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pukkaprice-backend/internal/usecase"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const (
	// OutboxChannel — канал LISTEN/NOTIFY о новых событиях.
	OutboxChannel = "outbox_pending"

	uniqueViolation = "23505"
)

type OutboxEventRepo struct {
	pool         *pgxpool.Pool
	conv         converter.OutboxEventConverter
	getter       *trmpgx.CtxGetter
	stuckTimeout time.Duration
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter, stuckTimeout time.Duration) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool:         pool,
		conv:         conv,
		getter:       trmpgx.DefaultCtxGetter,
		stuckTimeout: stuckTimeout,
	}
}

// Create записывает событие в транзакции из контекста и будит воркер через NOTIFY.
// NOTIFY доставляется только после коммита транзакции.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	db := o.getter.DefaultTrOrDB(ctx, o.pool)

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			product_id,
			payload,
			status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;
	`

	if err := db.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.ProductID,
		model.Payload,
		model.Status,
		model.CreatedAt,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return nil, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), err)
	}

	if _, err := db.Exec(ctx, "NOTIFY "+OutboxChannel); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing забирает пачку ожидающих событий. Параллельные воркеры
// не получают одни и те же события благодаря SKIP LOCKED.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) (_ []usecase.OutboxEvent, err error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at, id
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, event_type, product_id, payload, status, created_at, processed_at
	`

	rows, err := tx.Query(ctx, query, usecase.OutboxStatusProcessing, usecase.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []converter.OutboxEventModel
	for rows.Next() {
		var model converter.OutboxEventModel
		err = rows.Scan(
			&model.ID,
			&model.EventID,
			&model.EventType,
			&model.ProductID,
			&model.Payload,
			&model.Status,
			&model.CreatedAt,
			&model.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan event: %w", whereami.WhereAmI(), err)
		}

		models = append(models, model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`

	// Ноль затронутых строк означает, что событие уже обработано другим воркером
	if _, err := o.pool.Exec(ctx, query, usecase.OutboxStatusProcessed, id, usecase.OutboxStatusProcessing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// ResetStuck возвращает в очередь события, зависшие в processing дольше stuckTimeout.
func (o *OutboxEventRepo) ResetStuck(ctx context.Context) (int64, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE status = $2 AND processing_started_at < NOW() - make_interval(secs => $3)
	`

	tag, err := o.pool.Exec(ctx, query, usecase.OutboxStatusPending, usecase.OutboxStatusProcessing, o.stuckTimeout.Seconds())
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected(), nil
}

func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
