package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
)

// PointRepo provides access to the point_transactions ledger. The
// ledger is append-only: amounts are immutable and the only permitted
// mutation is the pending → completed/cancelled status flip. Balance
// figures are always derived by summing the log (see SumBalancesTx),
// never read back from a previous computation.
type PointRepo struct {
	db *sql.DB
}

// NewPointRepo returns a new PointRepo bound to the given database.
func NewPointRepo(db *sql.DB) *PointRepo { return &PointRepo{db: db} }

// DB exposes the underlying handle so the points service can begin
// transactions spanning the ledger and the cached user balance.
func (r *PointRepo) DB() *sql.DB { return r.db }

// InsertTx appends one ledger entry within the provided transaction
// and populates the generated ID and timestamps.
func (r *PointRepo) InsertTx(ctx context.Context, tx *sql.Tx, entry *model.PointTransaction) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	const q = `INSERT INTO point_transactions (user_id, amount, tx_type, source_type, description, status, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		entry.UserID, entry.Amount, string(entry.TxType), entry.SourceType,
		entry.Description, string(entry.Status), entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = uint64(id)
	return nil
}

// GetByIDTx loads a ledger entry inside an existing transaction. It
// returns ErrPointTransactionNotFound when no row exists.
func (r *PointRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PointTransaction, error) {
	const q = `SELECT id, user_id, amount, tx_type, source_type, description, status, created_at, updated_at
               FROM point_transactions WHERE id = ?`
	var e model.PointTransaction
	var txType, status string
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.UserID, &e.Amount, &txType, &e.SourceType,
		&e.Description, &status, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPointTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	e.TxType = model.PointTransactionType(txType)
	e.Status = model.PointTransactionStatus(status)
	return &e, nil
}

// UpdateStatusTx flips a ledger entry from one status to another.
// The WHERE clause includes the expected current status, so the
// number of affected rows tells the caller whether the flip actually
// happened — that guard is what makes a pending → completed
// transition trigger its balance update exactly once.
func (r *PointRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.PointTransactionStatus, updatedAt time.Time) (bool, error) {
	const q = `UPDATE point_transactions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, q, string(to), updatedAt, id, string(from))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SumBalancesTx recomputes the balance pair for a user purely from
// the transaction log: total is the signed sum of all completed
// amounts, and available subtracts the points held by pending
// negative rows (redemption holds; their amounts are negative, so
// adding them lowers available). Because the result depends only on
// the log, the computation is idempotent and the cached balance can
// be rebuilt from scratch at any time.
func (r *PointRepo) SumBalancesTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.PointBalance, error) {
	const q = `SELECT
                 COALESCE(SUM(CASE WHEN status = 'completed' THEN amount ELSE 0 END), 0),
                 COALESCE(SUM(CASE WHEN status = 'pending' AND amount < 0 THEN amount ELSE 0 END), 0)
               FROM point_transactions WHERE user_id = ?`
	var total, pendingHold int64
	if err := tx.QueryRowContext(ctx, q, userID).Scan(&total, &pendingHold); err != nil {
		return model.PointBalance{}, err
	}
	return model.PointBalance{
		TotalPoints:     total,
		AvailablePoints: total + pendingHold,
	}, nil
}

// ListByUser returns a user's ledger entries, newest first.
func (r *PointRepo) ListByUser(ctx context.Context, userID uint64) ([]model.PointTransaction, error) {
	const q = `SELECT id, user_id, amount, tx_type, source_type, description, status, created_at, updated_at
               FROM point_transactions
               WHERE user_id = ?
               ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.PointTransaction, 0)
	for rows.Next() {
		var e model.PointTransaction
		var txType, status string
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Amount, &txType, &e.SourceType,
			&e.Description, &status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.TxType = model.PointTransactionType(txType)
		e.Status = model.PointTransactionStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
