package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
)

// StatusLogRepo provides append-only access to the
// reservation_status_logs table. Rows are inserted inside the same
// transaction as the reservation write they record and are never
// updated or deleted afterwards.
type StatusLogRepo struct {
	db *sql.DB
}

// NewStatusLogRepo returns a new StatusLogRepo bound to the given database.
func NewStatusLogRepo(db *sql.DB) *StatusLogRepo { return &StatusLogRepo{db: db} }

// InsertTx appends one status-log entry within the provided
// transaction and populates the generated ID and timestamp.
func (r *StatusLogRepo) InsertTx(ctx context.Context, tx *sql.Tx, entry *model.ReservationStatusLog) error {
	entry.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO reservation_status_logs (reservation_id, status, reason, actor, created_at)
               VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		entry.ReservationID, string(entry.Status), entry.Reason, entry.Actor, entry.CreatedAt,
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

// ListByReservation returns the full audit trail of a reservation in
// strict reverse-chronological order. The id tiebreak keeps the
// ordering deterministic when two entries share a timestamp.
func (r *StatusLogRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationStatusLog, error) {
	const q = `SELECT id, reservation_id, status, reason, actor, created_at
               FROM reservation_status_logs
               WHERE reservation_id = ?
               ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.ReservationStatusLog, 0)
	for rows.Next() {
		var e model.ReservationStatusLog
		var status string
		if err := rows.Scan(&e.ID, &e.ReservationID, &status, &e.Reason, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = model.ReservationStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
