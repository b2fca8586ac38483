// Package repository provides raw-SQL data access for the booking
// engine. This file defines sentinel errors shared across the
// repositories. Handlers and services compare against them with
// errors.Is to translate persistence outcomes into tagged failures;
// in particular each *NotFound sentinel names the entity that was
// missing, which the HTTP layer surfaces verbatim.
package repository

import "errors"

// ErrUserNotFound is returned when the referenced user id does not
// resolve to a users row.
var ErrUserNotFound = errors.New("user not found")

// ErrShopNotFound is returned when the referenced shop id does not
// resolve to a shops row.
var ErrShopNotFound = errors.New("shop not found")

// ErrServiceNotFound is returned when the referenced service id does
// not resolve to a services row, or when the service does not belong
// to the shop being booked.
var ErrServiceNotFound = errors.New("service not found")

// ErrReservationNotFound is returned when the referenced reservation
// id does not resolve to a reservations row.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrPointTransactionNotFound is returned when the referenced ledger
// entry does not exist.
var ErrPointTransactionNotFound = errors.New("point transaction not found")
