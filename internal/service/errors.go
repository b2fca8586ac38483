// Package service implements the booking engine's state machines:
// reservation lifecycle + reschedule protocol, the points ledger and
// the shop approval workflow. Each operation groups its writes into a
// single SQL transaction and, where a check-then-write hazard exists,
// runs under a named lock from the lock package.
package service

import "errors"

// ErrSlotUnavailable is the expected contention outcome: the
// requested interval overlaps an existing pending or confirmed
// reservation for the same shop-day. It is not a system fault; the
// caller should offer the user a different slot.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrInvalidTransition is returned when a requested lifecycle change
// is not present in the transition table, or when a reschedule is
// attempted on a reservation that is no longer live.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidSlot is returned when the requested slot is malformed:
// bad date or time format, or an end time not strictly after the
// start time.
var ErrInvalidSlot = errors.New("invalid slot interval")

// ErrShopNotAcceptingBookings is returned when the target shop exists
// but is not in the active approval state.
var ErrShopNotAcceptingBookings = errors.New("shop not accepting bookings")

// ErrInvalidAmount is returned when a ledger entry's sign does not
// match its transaction type (earned must be positive, spent and
// expired negative, adjusted non-zero).
var ErrInvalidAmount = errors.New("invalid point amount for transaction type")

// ErrTransactionFinalized is returned when completing or cancelling a
// ledger entry that is no longer pending. The pending → completed
// flip happens at most once.
var ErrTransactionFinalized = errors.New("point transaction already finalized")
