package model

import "time"

// ShopStatus enumerates the approval states of a shop. New shops
// start in `pending_approval`; `closed` is terminal.
type ShopStatus string

const (
	ShopStatusPendingApproval ShopStatus = "pending_approval"
	ShopStatusActive          ShopStatus = "active"
	ShopStatusSuspended       ShopStatus = "suspended"
	ShopStatusClosed          ShopStatus = "closed"
)

// shopTransitions mirrors the reservation transition table for the
// shop approval workflow: pending_approval → active, active ↔
// suspended, and active|suspended → closed.
var shopTransitions = map[ShopStatus][]ShopStatus{
	ShopStatusPendingApproval: {ShopStatusActive},
	ShopStatusActive:          {ShopStatusSuspended, ShopStatusClosed},
	ShopStatusSuspended:       {ShopStatusActive, ShopStatusClosed},
}

// CanTransitionTo reports whether moving from s to next is a legal
// approval transition.
func (s ShopStatus) CanTransitionTo(next ShopStatus) bool {
	for _, allowed := range shopTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Shop is a service provider on the marketplace. Only `active` shops
// accept bookings; the approval workflow owns the Status field and
// every change is mirrored into shop_approval_logs.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerName – display name of the shop owner.
//  Name      – shop name shown to customers.
//  Status    – current approval state.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Shop struct {
	ID        uint64     // shops.id
	OwnerName string     // shops.owner_name
	Name      string     // shops.name
	Status    ShopStatus // shops.status
	CreatedAt time.Time  // shops.created_at
	UpdatedAt time.Time  // shops.updated_at
}

// ShopApprovalLog is one append-only entry in a shop's approval audit
// trail, same shape and discipline as ReservationStatusLog.
//
// Fields:
//  ID        – primary key identifier.
//  ShopID    – owning shop.
//  Status    – status the shop held after this entry.
//  Reason    – optional reason supplied by the administrator.
//  Actor     – administrator identity that made the change.
//  CreatedAt – when the transition happened.
type ShopApprovalLog struct {
	ID        uint64     // shop_approval_logs.id
	ShopID    uint64     // shop_approval_logs.shop_id
	Status    ShopStatus // shop_approval_logs.status
	Reason    string     // shop_approval_logs.reason
	Actor     string     // shop_approval_logs.actor
	CreatedAt time.Time  // shop_approval_logs.created_at
}
