package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
)

// ReservationRepo provides data access to the reservations table.
// Mutating methods take an explicit *sql.Tx because the service layer
// groups the reservation write and its status-log append into one
// transaction; the caller must commit or roll back. All timestamps
// are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so that services can begin
// transactions spanning several repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new reservation within the provided transaction
// and populates the generated ID and timestamps on the passed model.
// The caller is expected to hold the slot lock for the reservation's
// (shop, date) key so that the preceding overlap check and this
// insert are atomic with respect to other bookers.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	const q = `INSERT INTO reservations
               (user_id, shop_id, service_id, reserved_date, start_time, end_time, status, notes, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.ShopID, res.ServiceID,
		res.ReservedDate, res.StartTime, res.EndTime,
		string(res.Status), res.Notes, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID loads a reservation by its primary key. It returns
// ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, reservationSelect+` WHERE id = ?`, id))
}

// GetByIDTx is GetByID inside an existing transaction. Services use
// it to re-read current state after acquiring a serialization key so
// the transition check runs against fresh data.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx, reservationSelect+` WHERE id = ?`, id))
}

const reservationSelect = `SELECT id, user_id, shop_id, service_id, reserved_date, start_time, end_time,
                                  status, notes, created_at, updated_at
                           FROM reservations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	var status string
	err := row.Scan(
		&res.ID, &res.UserID, &res.ShopID, &res.ServiceID,
		&res.ReservedDate, &res.StartTime, &res.EndTime,
		&status, &res.Notes, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatus(status)
	return &res, nil
}

// FindOverlappingTx returns the IDs of reservations on the given
// shop-day whose [start,end) interval overlaps the requested one and
// whose status still claims the slot (pending or confirmed). Two
// intervals [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1;
// since times are zero-padded HH:MM strings the SQL comparison is
// chronological. excludeID removes the caller's own reservation from
// consideration during reschedule (zero means exclude nothing).
//
// The query is a plain SELECT: mutual exclusion comes from the named
// slot lock the caller holds, not from row locking, so it behaves the
// same on every SQL engine.
func (r *ReservationRepo) FindOverlappingTx(ctx context.Context, tx *sql.Tx, shopID uint64, date, startTime, endTime string, excludeID uint64) ([]uint64, error) {
	const q = `SELECT id FROM reservations
               WHERE shop_id = ? AND reserved_date = ?
                 AND status IN ('pending', 'confirmed')
                 AND start_time < ? AND ? < end_time
                 AND id <> ?`
	rows, err := tx.QueryContext(ctx, q, shopID, date, endTime, startTime, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStatusTx moves a reservation to a new status within the
// provided transaction. The legality of the transition has already
// been checked by the state machine; this method only performs the
// write.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus, updatedAt time.Time) error {
	const q = `UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, string(status), updatedAt, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// UpdateSlotTx rewrites the date and time interval of a reservation
// in place, preserving its identity and status. Used exclusively by
// the reschedule protocol after the new slot passed conflict
// validation under the new slot's lock.
func (r *ReservationRepo) UpdateSlotTx(ctx context.Context, tx *sql.Tx, id uint64, date, startTime, endTime string, updatedAt time.Time) error {
	const q = `UPDATE reservations
               SET reserved_date = ?, start_time = ?, end_time = ?, updated_at = ?
               WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, date, startTime, endTime, updatedAt, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListByUser returns all reservations created by the given user,
// newest first. When none exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = reservationSelect + ` WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		var status string
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.ShopID, &res.ServiceID,
			&res.ReservedDate, &res.StartTime, &res.EndTime,
			&status, &res.Notes, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		res.Status = model.ReservationStatus(status)
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
