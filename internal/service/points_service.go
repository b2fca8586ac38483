package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/lock"
	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
)

// PointsService maintains each user's point balance as a
// materialized view over the append-only point_transactions log.
// Every mutation serializes on the user's points key, appends or
// flips exactly one ledger row, recomputes the balance pair from the
// log and persists it onto the user row — all inside one SQL
// transaction. The cached columns are never adjusted incrementally,
// so the balance can always be rebuilt from scratch.
type PointsService struct {
	locker lock.Locker
	points *repository.PointRepo
	users  *repository.UserRepo
}

// NewPointsService constructs a PointsService. All dependencies must
// be non-nil.
func NewPointsService(locker lock.Locker, points *repository.PointRepo, users *repository.UserRepo) *PointsService {
	if locker == nil || points == nil || users == nil {
		panic("nil dependency passed to NewPointsService")
	}
	return &PointsService{locker: locker, points: points, users: users}
}

// validateAmount enforces the sign convention that keeps the balance
// a plain sum: earned rows positive, spent and expired rows negative,
// adjusted rows merely non-zero.
func validateAmount(txType model.PointTransactionType, amount int64) error {
	switch txType {
	case model.PointTxEarned:
		if amount <= 0 {
			return ErrInvalidAmount
		}
	case model.PointTxSpent, model.PointTxExpired:
		if amount >= 0 {
			return ErrInvalidAmount
		}
	case model.PointTxAdjusted:
		if amount == 0 {
			return ErrInvalidAmount
		}
	default:
		return ErrInvalidAmount
	}
	return nil
}

// Record appends a completed ledger entry and refreshes the user's
// cached balance in the same transaction. Earning flows complete
// synchronously, so this is the common path for earned, expired and
// adjustment entries as well as immediate spends.
func (s *PointsService) Record(ctx context.Context, userID uint64, amount int64, txType model.PointTransactionType, sourceType, description string) (*model.PointTransaction, error) {
	return s.append(ctx, userID, amount, txType, sourceType, description, model.PointTxCompleted)
}

// Hold appends a pending redemption entry. The amount must be
// negative; pending negative rows lower available_points without
// touching total_points until Complete or Cancel resolves them.
func (s *PointsService) Hold(ctx context.Context, userID uint64, amount int64, txType model.PointTransactionType, sourceType, description string) (*model.PointTransaction, error) {
	if amount >= 0 {
		return nil, ErrInvalidAmount
	}
	return s.append(ctx, userID, amount, txType, sourceType, description, model.PointTxPending)
}

func (s *PointsService) append(ctx context.Context, userID uint64, amount int64, txType model.PointTransactionType, sourceType, description string, status model.PointTransactionStatus) (*model.PointTransaction, error) {
	if err := validateAmount(txType, amount); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.PointsKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	entry := &model.PointTransaction{
		UserID:      userID,
		Amount:      amount,
		TxType:      txType,
		SourceType:  sourceType,
		Description: description,
		Status:      status,
	}
	err = s.inBalanceTx(ctx, userID, func(tx *sql.Tx) error {
		return s.points.InsertTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Complete flips a pending entry to completed, which is the event
// that folds its amount into total_points — exactly once, enforced by
// the compare-and-set on the row's status.
func (s *PointsService) Complete(ctx context.Context, txID uint64) (*model.PointTransaction, error) {
	return s.finalize(ctx, txID, model.PointTxCompleted)
}

// Cancel flips a pending entry to cancelled, releasing its hold on
// available_points. Completed entries cannot be cancelled.
func (s *PointsService) Cancel(ctx context.Context, txID uint64) (*model.PointTransaction, error) {
	return s.finalize(ctx, txID, model.PointTxCancelled)
}

func (s *PointsService) finalize(ctx context.Context, txID uint64, to model.PointTransactionStatus) (*model.PointTransaction, error) {
	// Resolve the owner first; the lock key is per user.
	probe, err := s.points.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	entry, err := s.points.GetByIDTx(ctx, probe, txID)
	_ = probe.Rollback()
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.PointsKey(entry.UserID))
	if err != nil {
		return nil, err
	}
	defer release()

	now := time.Now().UTC()
	err = s.inBalanceTx(ctx, entry.UserID, func(tx *sql.Tx) error {
		flipped, err := s.points.UpdateStatusTx(ctx, tx, txID, model.PointTxPending, to, now)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrTransactionFinalized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	entry.Status = to
	entry.UpdatedAt = now
	return entry, nil
}

// inBalanceTx runs fn and then recomputes and persists the user's
// balance pair, all in one transaction. Every ledger mutation funnels
// through here so the cached columns always reflect the log state
// committed with them.
func (s *PointsService) inBalanceTx(ctx context.Context, userID uint64, fn func(tx *sql.Tx) error) error {
	tx, err := s.points.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	balance, err := s.points.SumBalancesTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := s.users.UpdateBalanceTx(ctx, tx, userID, balance, time.Now().UTC()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Balance returns the cached balance pair for a user.
func (s *PointsService) Balance(ctx context.Context, userID uint64) (model.PointBalance, error) {
	return s.users.GetBalance(ctx, userID)
}

// Reconcile recomputes the balance pair from the ledger and rewrites
// the cached columns, returning both the previously cached pair and
// the recomputed one so callers can detect drift. Running it twice in
// a row is a no-op; the recomputation depends only on the log.
func (s *PointsService) Reconcile(ctx context.Context, userID uint64) (cached, rebuilt model.PointBalance, err error) {
	if cached, err = s.users.GetBalance(ctx, userID); err != nil {
		return model.PointBalance{}, model.PointBalance{}, err
	}

	release, err := s.locker.Acquire(ctx, lock.PointsKey(userID))
	if err != nil {
		return model.PointBalance{}, model.PointBalance{}, err
	}
	defer release()

	err = s.inBalanceTx(ctx, userID, func(tx *sql.Tx) error {
		rebuilt, err = s.points.SumBalancesTx(ctx, tx, userID)
		return err
	})
	if err != nil {
		return model.PointBalance{}, model.PointBalance{}, err
	}
	return cached, rebuilt, nil
}

// History returns a user's ledger entries newest-first.
func (s *PointsService) History(ctx context.Context, userID uint64) ([]model.PointTransaction, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.points.ListByUser(ctx, userID)
}
