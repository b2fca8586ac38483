package service

import (
	"context"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/lock"
	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
)

// ShopService runs the shop approval workflow: pending_approval →
// active, active ↔ suspended, active|suspended → closed. It mirrors
// the reservation state machine's logging discipline — one approval
// log row per transition, written in the same transaction as the
// status change. There is no conflict dimension here; the per-shop
// key only absorbs lost updates from rapid double-submits.
type ShopService struct {
	locker lock.Locker
	shops  *repository.ShopRepo
}

// NewShopService constructs a ShopService. All dependencies must be
// non-nil.
func NewShopService(locker lock.Locker, shops *repository.ShopRepo) *ShopService {
	if locker == nil || shops == nil {
		panic("nil dependency passed to NewShopService")
	}
	return &ShopService{locker: locker, shops: shops}
}

// Transition moves a shop to newStatus when the approval transition
// table allows it. The actor is the administrator identity; it is
// recorded on the log row.
func (s *ShopService) Transition(ctx context.Context, shopID uint64, newStatus model.ShopStatus, reason, actor string) (*model.Shop, error) {
	switch newStatus {
	case model.ShopStatusActive, model.ShopStatusSuspended, model.ShopStatusClosed:
	default:
		return nil, ErrInvalidTransition
	}

	release, err := s.locker.Acquire(ctx, lock.ShopKey(shopID))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.shops.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	shop, err := s.shops.GetByIDTx(ctx, tx, shopID)
	if err != nil {
		return nil, err
	}
	if !shop.Status.CanTransitionTo(newStatus) {
		return nil, ErrInvalidTransition
	}
	now := time.Now().UTC()
	if err := s.shops.UpdateStatusTx(ctx, tx, shopID, newStatus, now); err != nil {
		return nil, err
	}
	entry := &model.ShopApprovalLog{
		ShopID: shopID,
		Status: newStatus,
		Reason: reason,
		Actor:  actor,
	}
	if err := s.shops.InsertApprovalLogTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	shop.Status = newStatus
	shop.UpdatedAt = now
	return shop, nil
}

// Get returns a shop by id.
func (s *ShopService) Get(ctx context.Context, shopID uint64) (*model.Shop, error) {
	return s.shops.GetByID(ctx, shopID)
}

// ApprovalLog returns a shop's approval audit trail newest-first.
func (s *ShopService) ApprovalLog(ctx context.Context, shopID uint64) ([]model.ShopApprovalLog, error) {
	if _, err := s.shops.GetByID(ctx, shopID); err != nil {
		return nil, err
	}
	return s.shops.ListApprovalLogs(ctx, shopID)
}
