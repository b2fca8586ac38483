package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
)

// ServiceRepo provides read access to the services table. The
// booking engine only consumes services; creating and editing them is
// the catalogue's job and lives elsewhere.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceSelect = `SELECT id, shop_id, name, duration_min, price_cents, is_active, created_at, updated_at
                       FROM services`

// GetByID loads a service by primary key. It returns
// ErrServiceNotFound when no row exists.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	var s model.Service
	err := r.db.QueryRowContext(ctx, serviceSelect+` WHERE id = ?`, id).Scan(
		&s.ID, &s.ShopID, &s.Name, &s.DurationMin, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
