package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-participation/internal/domain/request"
	"github.com/sanosuguru/go-event-participation/internal/domain/transaction"
)

// requestRow はDBの行を表す構造体
type requestRow struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	RequesterID string    `db:"requester_id"`
	Status      string    `db:"status"`
	Created     time.Time `db:"created"`
}

func (r *requestRow) toEntity() *request.ParticipationRequest {
	return &request.ParticipationRequest{
		ID:          r.ID,
		EventID:     r.EventID,
		RequesterID: r.RequesterID,
		Status:      request.Status(r.Status),
		Created:     r.Created,
	}
}

const requestColumns = `id, event_id, requester_id, status, created`

// RequestRepository は参加リクエストリポジトリのPostgreSQL実装
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository はRequestRepositoryを作成する
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create は新しい参加リクエストを作成する
// （リクエスト者, イベント）の有効なリクエストは部分ユニークインデックスで
// DB側でも高々1件に制限されており、競合時は ErrDuplicateRequest を返す
func (r *RequestRepository) Create(ctx context.Context, tx transaction.Tx, req *request.ParticipationRequest) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}
	query := `
		INSERT INTO participation_requests (event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		req.EventID, req.RequesterID, string(req.Status), req.Created,
	).Scan(&req.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return request.ErrDuplicateRequest
		}
		return fmt.Errorf("参加リクエスト作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから参加リクエストを取得する
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*request.ParticipationRequest, error) {
	var row requestRow
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, request.ErrRequestNotFound
		}
		return nil, fmt.Errorf("参加リクエスト取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDs は複数IDから参加リクエストを取得する
func (r *RequestRepository) GetByIDs(ctx context.Context, ids []string) ([]*request.ParticipationRequest, error) {
	var rows []requestRow
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("参加リクエスト取得に失敗しました: %w", err)
	}
	return rowsToEntities(rows), nil
}

// ListByRequester はリクエスト者IDから参加リクエスト一覧を取得する
func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*request.ParticipationRequest, error) {
	var rows []requestRow
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE requester_id = $1 ORDER BY created DESC`
	if err := r.db.SelectContext(ctx, &rows, query, requesterID); err != nil {
		return nil, fmt.Errorf("参加リクエスト一覧取得に失敗しました: %w", err)
	}
	return rowsToEntities(rows), nil
}

// ListByEvent はイベントIDから参加リクエスト一覧を取得する
func (r *RequestRepository) ListByEvent(ctx context.Context, eventID string) ([]*request.ParticipationRequest, error) {
	var rows []requestRow
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = $1 ORDER BY created`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("参加リクエスト一覧取得に失敗しました: %w", err)
	}
	return rowsToEntities(rows), nil
}

// FindPendingByEvent はイベントの保留中リクエスト一覧を取得する
func (r *RequestRepository) FindPendingByEvent(ctx context.Context, eventID string) ([]*request.ParticipationRequest, error) {
	var rows []requestRow
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = $1 AND status = $2 ORDER BY created`
	if err := r.db.SelectContext(ctx, &rows, query, eventID, string(request.StatusPending)); err != nil {
		return nil, fmt.Errorf("保留中リクエスト取得に失敗しました: %w", err)
	}
	return rowsToEntities(rows), nil
}

// FindActiveByRequesterAndEvent は（リクエスト者, イベント）の有効なリクエストを取得する
func (r *RequestRepository) FindActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*request.ParticipationRequest, error) {
	var row requestRow
	query := `SELECT ` + requestColumns + ` FROM participation_requests
		WHERE requester_id = $1 AND event_id = $2 AND status <> $3`
	if err := r.db.GetContext(ctx, &row, query, requesterID, eventID, string(request.StatusCanceled)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, request.ErrRequestNotFound
		}
		return nil, fmt.Errorf("参加リクエスト取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// Update は参加リクエストを更新する
func (r *RequestRepository) Update(ctx context.Context, tx transaction.Tx, req *request.ParticipationRequest) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}
	result, err := sqlxTx.ExecContext(ctx,
		`UPDATE participation_requests SET status = $1 WHERE id = $2`, string(req.Status), req.ID)
	if err != nil {
		return fmt.Errorf("参加リクエスト更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return request.ErrRequestNotFound
	}
	return nil
}

// UpdateAll は複数の参加リクエストを同一トランザクションで更新する
func (r *RequestRepository) UpdateAll(ctx context.Context, tx transaction.Tx, reqs []*request.ParticipationRequest) error {
	for _, req := range reqs {
		if err := r.Update(ctx, tx, req); err != nil {
			return err
		}
	}
	return nil
}

func rowsToEntities(rows []requestRow) []*request.ParticipationRequest {
	result := make([]*request.ParticipationRequest, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result
}

var _ request.Repository = (*RequestRepository)(nil)
