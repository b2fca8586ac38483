package model

import "time"

// PointTransactionType classifies a ledger entry. Amounts are stored
// signed: `earned` rows are positive, `spent` and `expired` rows are
// negative, `adjusted` rows may be either. This keeps the balance a
// plain sum over completed rows.
type PointTransactionType string

const (
	PointTxEarned   PointTransactionType = "earned"
	PointTxSpent    PointTransactionType = "spent"
	PointTxExpired  PointTransactionType = "expired"
	PointTxAdjusted PointTransactionType = "adjusted"
)

// PointTransactionStatus tracks whether a ledger entry has taken
// effect. Only `completed` rows contribute to total_points; pending
// negative rows (redemption holds) reduce available_points until they
// complete or are cancelled.
type PointTransactionStatus string

const (
	PointTxPending   PointTransactionStatus = "pending"
	PointTxCompleted PointTransactionStatus = "completed"
	PointTxCancelled PointTransactionStatus = "cancelled"
)

// PointTransaction is one append-only entry in a user's points
// ledger. The row's amount is immutable; the only mutation the ledger
// permits is the pending → completed/cancelled status flip, and that
// flip is the single event that triggers a balance update.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the ledger entry.
//  Amount      – signed points amount.
//  TxType      – earned | spent | expired | adjusted.
//  SourceType  – what produced the entry (e.g. "reservation", "promotion").
//  Description – free-text description for statements.
//  Status      – pending | completed | cancelled.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last status change timestamp.
type PointTransaction struct {
	ID          uint64                 // point_transactions.id
	UserID      uint64                 // point_transactions.user_id
	Amount      int64                  // point_transactions.amount
	TxType      PointTransactionType   // point_transactions.tx_type
	SourceType  string                 // point_transactions.source_type
	Description string                 // point_transactions.description
	Status      PointTransactionStatus // point_transactions.status
	CreatedAt   time.Time              // point_transactions.created_at
	UpdatedAt   time.Time              // point_transactions.updated_at
}

// PointBalance is the derived balance pair cached on the user row.
// It is a materialized view over the transaction log: TotalPoints is
// the sum of all completed amounts, AvailablePoints additionally
// subtracts points held by pending redemptions. It is never written
// directly — only the ledger recomputes it.
type PointBalance struct {
	TotalPoints     int64 // users.total_points
	AvailablePoints int64 // users.available_points
}
