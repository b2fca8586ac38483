// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationStatusEvent is published after every successful
// reservation mutation (create, transition, reschedule). It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type ReservationStatusEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	ShopID        uint64 `json:"shop_id"`
	ServiceID     uint64 `json:"service_id"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	Actor         string `json:"actor,omitempty"`
	ReservedDate  string `json:"reserved_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	OccurredAt    string `json:"occurred_at"`
}
