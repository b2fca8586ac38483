package model

import "time"

// User represents an application user as stored in the `users`
// table. The two points columns are the cached balance pair derived
// from the point_transactions ledger; they are written exclusively by
// the points service and must never be mutated elsewhere.
//
// Fields:
//  ID              – primary key identifier.
//  DisplayName     – name shown in the interface.
//  Email           – unique email address.
//  TotalPoints     – cached sum of completed ledger amounts.
//  AvailablePoints – TotalPoints minus pending redemption holds.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64    // users.id
	DisplayName     string    // users.display_name
	Email           string    // users.email
	TotalPoints     int64     // users.total_points
	AvailablePoints int64     // users.available_points
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
}
