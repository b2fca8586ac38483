// Package lock provides the named-mutex-per-key primitive that the
// booking engine uses to serialize check-then-write sequences. Each
// contested resource is addressed by a string key: one key per shop
// calendar day for slot conflicts, one key per user for point balance
// updates, one key per shop for approval transitions. Requests for
// different keys proceed fully in parallel; requests for the same key
// serialize in acquisition order.
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is returned when a key stays contested for longer than
// the caller's wait bound. No state has been touched when it is
// returned, so the operation is safe to retry with backoff.
var ErrTimeout = errors.New("lock: wait timeout")

// Locker serializes access to named keys. Acquire blocks until the
// key is free, the wait bound elapses (ErrTimeout) or ctx is
// cancelled. On success it returns a release function that must be
// called exactly once; calling it again is a no-op.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SlotKey derives the serialization key for slot conflict checks.
// It is deliberately coarser than the exact interval: overlap
// detection must compare against every live interval for the shop's
// day, so the whole (shop, date) pair serializes.
func SlotKey(shopID uint64, date string) string {
	return fmt.Sprintf("slot:%d:%s", shopID, date)
}

// PointsKey derives the serialization key for a user's balance
// updates.
func PointsKey(userID uint64) string {
	return fmt.Sprintf("points:%d", userID)
}

// ShopKey derives the serialization key for a shop's approval
// transitions.
func ShopKey(shopID uint64) string {
	return fmt.Sprintf("shop:%d", shopID)
}
