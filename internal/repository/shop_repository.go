package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
)

// ShopRepo provides data access to the shops table and the
// shop_approval_logs audit trail. The approval log follows the same
// append-only discipline as the reservation status log: one row per
// transition, written in the transition's own transaction.
type ShopRepo struct {
	db *sql.DB
}

// NewShopRepo returns a new ShopRepo bound to the given database.
func NewShopRepo(db *sql.DB) *ShopRepo { return &ShopRepo{db: db} }

// DB exposes the underlying handle so the shop service can begin
// transactions covering the status write and its log append.
func (r *ShopRepo) DB() *sql.DB { return r.db }

const shopSelect = `SELECT id, owner_name, name, status, created_at, updated_at FROM shops`

// GetByID loads a shop by primary key. It returns ErrShopNotFound
// when no row exists.
func (r *ShopRepo) GetByID(ctx context.Context, id uint64) (*model.Shop, error) {
	return scanShop(r.db.QueryRowContext(ctx, shopSelect+` WHERE id = ?`, id))
}

// GetByIDTx is GetByID inside an existing transaction; the approval
// workflow re-reads the shop under its serialization key so a rapid
// double-submit sees the first submit's result.
func (r *ShopRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Shop, error) {
	return scanShop(tx.QueryRowContext(ctx, shopSelect+` WHERE id = ?`, id))
}

func scanShop(row rowScanner) (*model.Shop, error) {
	var s model.Shop
	var status string
	err := row.Scan(&s.ID, &s.OwnerName, &s.Name, &status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Status = model.ShopStatus(status)
	return &s, nil
}

// UpdateStatusTx moves a shop to a new approval status within the
// provided transaction.
func (r *ShopRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ShopStatus, updatedAt time.Time) error {
	const q = `UPDATE shops SET status = ?, updated_at = ? WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, string(status), updatedAt, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShopNotFound
	}
	return nil
}

// InsertApprovalLogTx appends one approval-log entry within the
// provided transaction and populates the generated ID and timestamp.
func (r *ShopRepo) InsertApprovalLogTx(ctx context.Context, tx *sql.Tx, entry *model.ShopApprovalLog) error {
	entry.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO shop_approval_logs (shop_id, status, reason, actor, created_at)
               VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		entry.ShopID, string(entry.Status), entry.Reason, entry.Actor, entry.CreatedAt,
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

// ListApprovalLogs returns a shop's approval audit trail in strict
// reverse-chronological order.
func (r *ShopRepo) ListApprovalLogs(ctx context.Context, shopID uint64) ([]model.ShopApprovalLog, error) {
	const q = `SELECT id, shop_id, status, reason, actor, created_at
               FROM shop_approval_logs
               WHERE shop_id = ?
               ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.ShopApprovalLog, 0)
	for rows.Next() {
		var e model.ShopApprovalLog
		var status string
		if err := rows.Scan(&e.ID, &e.ShopID, &status, &e.Reason, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = model.ShopStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
