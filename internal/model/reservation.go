package model

import "time"

// ReservationStatus enumerates the lifecycle states of a reservation.
// `pending` is the initial state; `completed`, `cancelled` and
// `no_show` are terminal.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// reservationTransitions is the authoritative transition table for the
// reservation state machine. Any (from, to) pair not present here is
// rejected with ErrInvalidTransition by the service layer.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow},
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s permits no further transitions.
func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

// Reschedulable reports whether a reservation in state s may still be
// moved to a different slot. Only live bookings can move.
func (s ReservationStatus) Reschedulable() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// Reservation records a user's claim on a shop's time slot for a
// specific service. The slot is the triple (reserved date, start
// time, end time); times are zero-padded "HH:MM" strings and the date
// is "YYYY-MM-DD", so lexicographic comparison matches chronological
// comparison. Reservations are never physically deleted — terminal
// statuses are the only way out.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who booked the slot.
//  ShopID       – shop providing the service.
//  ServiceID    – service being booked; must belong to ShopID.
//  ReservedDate – calendar date of the slot ("YYYY-MM-DD").
//  StartTime    – inclusive start of the slot ("HH:MM").
//  EndTime      – exclusive end of the slot ("HH:MM").
//  Status       – current lifecycle state.
//  Notes        – free-text notes from the customer.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Reservation struct {
	ID           uint64            // reservations.id
	UserID       uint64            // reservations.user_id
	ShopID       uint64            // reservations.shop_id
	ServiceID    uint64            // reservations.service_id
	ReservedDate string            // reservations.reserved_date
	StartTime    string            // reservations.start_time
	EndTime      string            // reservations.end_time
	Status       ReservationStatus // reservations.status
	Notes        string            // reservations.notes
	CreatedAt    time.Time         // reservations.created_at
	UpdatedAt    time.Time         // reservations.updated_at
}

// ReservationStatusLog is one append-only audit entry for a
// reservation. A row is written for every transition, including the
// initial `pending` entry at creation and a same-status entry when a
// reservation is rescheduled (the log then records *when* the slot
// moved). Rows are never updated or deleted, and the newest row's
// status always equals the parent reservation's current status.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation.
//  Status        – status the reservation held after this entry.
//  Reason        – optional human-readable reason or note.
//  Actor         – identity that caused the transition.
//  CreatedAt     – when the transition happened.
type ReservationStatusLog struct {
	ID            uint64            // reservation_status_logs.id
	ReservationID uint64            // reservation_status_logs.reservation_id
	Status        ReservationStatus // reservation_status_logs.status
	Reason        string            // reservation_status_logs.reason
	Actor         string            // reservation_status_logs.actor
	CreatedAt     time.Time         // reservation_status_logs.created_at
}
