package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
)

// UserRepo provides data access to the users table, including the
// cached point balance columns. The balance columns are written only
// through UpdateBalanceTx, which the points service calls in lockstep
// with ledger mutations; nothing else may touch them.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userSelect = `SELECT id, display_name, email, total_points, available_points, created_at, updated_at
                    FROM users`

// GetByID loads a user by primary key. It returns ErrUserNotFound
// when no row exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id).Scan(
		&u.ID, &u.DisplayName, &u.Email, &u.TotalPoints, &u.AvailablePoints, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.User, error) {
	var u model.User
	err := tx.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id).Scan(
		&u.ID, &u.DisplayName, &u.Email, &u.TotalPoints, &u.AvailablePoints, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateBalanceTx persists a freshly recomputed balance pair onto the
// user row within the provided transaction.
func (r *UserRepo) UpdateBalanceTx(ctx context.Context, tx *sql.Tx, userID uint64, balance model.PointBalance, updatedAt time.Time) error {
	const q = `UPDATE users SET total_points = ?, available_points = ?, updated_at = ? WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, balance.TotalPoints, balance.AvailablePoints, updatedAt, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetBalance returns the cached balance pair for a user.
func (r *UserRepo) GetBalance(ctx context.Context, userID uint64) (model.PointBalance, error) {
	const q = `SELECT total_points, available_points FROM users WHERE id = ?`
	var b model.PointBalance
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&b.TotalPoints, &b.AvailablePoints)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PointBalance{}, ErrUserNotFound
	}
	if err != nil {
		return model.PointBalance{}, err
	}
	return b, nil
}
