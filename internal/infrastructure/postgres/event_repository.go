package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-participation/internal/domain/event"
	"github.com/sanosuguru/go-event-participation/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID                string     `db:"id"`
	Title             string     `db:"title"`
	Annotation        *string    `db:"annotation"`
	Description       *string    `db:"description"`
	CategoryID        string     `db:"category_id"`
	InitiatorID       string     `db:"initiator_id"`
	EventDate         time.Time  `db:"event_date"`
	Paid              bool       `db:"paid"`
	ParticipantLimit  int        `db:"participant_limit"`
	RequestModeration bool       `db:"request_moderation"`
	ConfirmedRequests int        `db:"confirmed_requests"`
	State             string     `db:"state"`
	CreatedOn         time.Time  `db:"created_on"`
	PublishedOn       *time.Time `db:"published_on"`
	Views             int64      `db:"views"`
	Version           int        `db:"version"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var annotation, description string
	if r.Annotation != nil {
		annotation = *r.Annotation
	}
	if r.Description != nil {
		description = *r.Description
	}
	return &event.Event{
		ID:                r.ID,
		Title:             r.Title,
		Annotation:        annotation,
		Description:       description,
		CategoryID:        r.CategoryID,
		InitiatorID:       r.InitiatorID,
		EventDate:         r.EventDate,
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
		ConfirmedRequests: r.ConfirmedRequests,
		State:             event.State(r.State),
		CreatedOn:         r.CreatedOn,
		PublishedOn:       r.PublishedOn,
		Views:             r.Views,
		Version:           r.Version,
	}
}

const eventColumns = `id, title, annotation, description, category_id, initiator_id, event_date, paid,
	participant_limit, request_moderation, confirmed_requests, state, created_on, published_on, views, version`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id, event_date, paid,
			participant_limit, request_moderation, confirmed_requests, state, created_on, published_on, views, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	var annotation, description *string
	if e.Annotation != "" {
		annotation = &e.Annotation
	}
	if e.Description != "" {
		description = &e.Description
	}

	err := r.db.QueryRowContext(ctx, query,
		e.Title, annotation, description, e.CategoryID, e.InitiatorID, e.EventDate, e.Paid,
		e.ParticipantLimit, e.RequestModeration, e.ConfirmedRequests, string(e.State),
		e.CreatedOn, e.PublishedOn, e.Views, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDAndInitiator はIDと主催者IDからイベントを取得する
func (r *EventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id, initiatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetPublishedByID は公開済みイベントをIDから取得する
func (r *EventRepository) GetPublishedByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND state = $2`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id, string(event.StatePublished))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List は検索条件に一致するイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context, filter event.Filter) ([]*event.Event, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Text != "" {
		p := arg("%" + strings.ToLower(filter.Text) + "%")
		conds = append(conds, fmt.Sprintf("(LOWER(annotation) LIKE %s OR LOWER(description) LIKE %s)", p, p))
	}
	if len(filter.CategoryIDs) > 0 {
		conds = append(conds, "category_id = ANY("+arg(pq.Array(filter.CategoryIDs))+")")
	}
	if len(filter.InitiatorIDs) > 0 {
		conds = append(conds, "initiator_id = ANY("+arg(pq.Array(filter.InitiatorIDs))+")")
	}
	if len(filter.States) > 0 {
		states := make([]string, len(filter.States))
		for i, st := range filter.States {
			states[i] = string(st)
		}
		conds = append(conds, "state = ANY("+arg(pq.Array(states))+")")
	}
	if filter.Paid != nil {
		conds = append(conds, "paid = "+arg(*filter.Paid))
	}
	if filter.RangeStart != nil {
		conds = append(conds, "event_date >= "+arg(*filter.RangeStart))
	}
	if filter.RangeEnd != nil {
		conds = append(conds, "event_date <= "+arg(*filter.RangeEnd))
	}
	if filter.OnlyAvailable {
		conds = append(conds, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY event_date DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

const eventUpdateQuery = `
	UPDATE events
	SET title = $1, annotation = $2, description = $3, category_id = $4, event_date = $5, paid = $6,
	    participant_limit = $7, request_moderation = $8, confirmed_requests = $9, state = $10,
	    published_on = $11, version = version + 1
	WHERE id = $12 AND version = $13
`

// Update はイベントを更新する（楽観的ロック）
// 同一イベントへの並行更新があった場合は ErrOptimisticLockConflict を返す
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	result, err := r.db.ExecContext(ctx, eventUpdateQuery, eventUpdateArgs(e)...)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}
	return r.afterUpdate(e, result)
}

// UpdateTx はトランザクション内でイベントを更新する（楽観的ロック）
func (r *EventRepository) UpdateTx(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}
	result, err := sqlxTx.ExecContext(ctx, eventUpdateQuery, eventUpdateArgs(e)...)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}
	return r.afterUpdate(e, result)
}

func eventUpdateArgs(e *event.Event) []interface{} {
	var annotation, description *string
	if e.Annotation != "" {
		annotation = &e.Annotation
	}
	if e.Description != "" {
		description = &e.Description
	}
	return []interface{}{
		e.Title, annotation, description, e.CategoryID, e.EventDate, e.Paid,
		e.ParticipantLimit, e.RequestModeration, e.ConfirmedRequests, string(e.State),
		e.PublishedOn, e.ID, e.Version,
	}
}

func (r *EventRepository) afterUpdate(e *event.Event, result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrOptimisticLockConflict
	}
	e.Version++
	return nil
}

// AddViews は閲覧数カウンタをイベントIDごとの増分で加算する
func (r *EventRepository) AddViews(ctx context.Context, deltas map[string]int64) error {
	if len(deltas) == 0 {
		return nil
	}
	for id, delta := range deltas {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE events SET views = views + $1 WHERE id = $2`, delta, id); err != nil {
			return fmt.Errorf("閲覧数の更新に失敗しました: %w", err)
		}
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
