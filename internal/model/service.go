package model

import "time"

// Service is a bookable offering that belongs to exactly one shop.
// Reservation creation validates that the requested service exists,
// is active and belongs to the requested shop.
//
// Fields:
//  ID          – primary key identifier.
//  ShopID      – owning shop.
//  Name        – service name.
//  DurationMin – nominal duration in minutes.
//  PriceCents  – price in cents.
//  IsActive    – whether the service can currently be booked.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Service struct {
	ID          uint64    // services.id
	ShopID      uint64    // services.shop_id
	Name        string    // services.name
	DurationMin int64     // services.duration_min
	PriceCents  int64     // services.price_cents
	IsActive    bool      // services.is_active
	CreatedAt   time.Time // services.created_at
	UpdatedAt   time.Time // services.updated_at
}
