package service

import (
	"context"
	"time"

	"github.com/ModawnAI/everything-backend-sub017/internal/lock"
	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
)

// ReservationService owns the reservation lifecycle. Every mutation
// follows the same shape: resolve and validate the referenced
// entities, acquire the serialization key for the contested resource,
// then run the conflict check and the write (reservation row + one
// status-log row) inside one SQL transaction. The lock makes the
// check-then-write atomic against other callers on the same key; the
// transaction makes the row/log pair all-or-nothing.
type ReservationService struct {
	locker       lock.Locker
	reservations *repository.ReservationRepo
	statusLogs   *repository.StatusLogRepo
	users        *repository.UserRepo
	shops        *repository.ShopRepo
	services     *repository.ServiceRepo
}

// NewReservationService constructs a ReservationService. All
// dependencies must be non-nil.
func NewReservationService(
	locker lock.Locker,
	reservations *repository.ReservationRepo,
	statusLogs *repository.StatusLogRepo,
	users *repository.UserRepo,
	shops *repository.ShopRepo,
	services *repository.ServiceRepo,
) *ReservationService {
	if locker == nil || reservations == nil || statusLogs == nil || users == nil || shops == nil || services == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		locker:       locker,
		reservations: reservations,
		statusLogs:   statusLogs,
		users:        users,
		shops:        shops,
		services:     services,
	}
}

// CreateReservationInput carries everything needed to book a slot.
// Date is "YYYY-MM-DD"; StartTime and EndTime are zero-padded "HH:MM"
// with EndTime strictly after StartTime ([start,end) half-open).
type CreateReservationInput struct {
	UserID    uint64
	ShopID    uint64
	ServiceID uint64
	Date      string
	StartTime string
	EndTime   string
	Notes     string
	Actor     string
}

// validateSlot checks the date and time shape of a requested slot.
// time.Parse rejects non-zero-padded values, which keeps the stored
// strings lexicographically ordered.
func validateSlot(date, startTime, endTime string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidSlot
	}
	if _, err := time.Parse("15:04", startTime); err != nil {
		return ErrInvalidSlot
	}
	if _, err := time.Parse("15:04", endTime); err != nil {
		return ErrInvalidSlot
	}
	if endTime <= startTime {
		return ErrInvalidSlot
	}
	return nil
}

// Create books a new reservation in status `pending`. It validates
// that the user, shop and service exist, that the service belongs to
// the shop, and that the shop is active; then it serializes on the
// (shop, date) slot key, re-checks the day for overlapping live
// reservations and inserts the reservation together with its initial
// `pending` log entry. On overlap it returns ErrSlotUnavailable and
// nothing is written.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	if err := validateSlot(in.Date, in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	shop, err := s.shops.GetByID(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.Status != model.ShopStatusActive {
		return nil, ErrShopNotAcceptingBookings
	}
	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	// A service of another shop, or a retired one, does not exist as
	// far as this booking is concerned.
	if svc.ShopID != in.ShopID || !svc.IsActive {
		return nil, repository.ErrServiceNotFound
	}

	release, err := s.locker.Acquire(ctx, lock.SlotKey(in.ShopID, in.Date))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	overlapping, err := s.reservations.FindOverlappingTx(ctx, tx, in.ShopID, in.Date, in.StartTime, in.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrSlotUnavailable
	}
	res := &model.Reservation{
		UserID:       in.UserID,
		ShopID:       in.ShopID,
		ServiceID:    in.ServiceID,
		ReservedDate: in.Date,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Status:       model.ReservationStatusPending,
		Notes:        in.Notes,
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, err
	}
	entry := &model.ReservationStatusLog{
		ReservationID: res.ID,
		Status:        model.ReservationStatusPending,
		Reason:        "reservation created",
		Actor:         in.Actor,
	}
	if err := s.statusLogs.InsertTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// Transition moves a reservation to newStatus when the transition
// table allows it, appending exactly one status-log entry carrying
// newStatus. Transitions serialize on the reservation's slot key so
// a rapid double-submit cannot apply the same transition twice, and
// so a cancellation is totally ordered with concurrent creates
// targeting the freed slot.
func (s *ReservationService) Transition(ctx context.Context, reservationID uint64, newStatus model.ReservationStatus, reason, actor string) (*model.Reservation, error) {
	switch newStatus {
	case model.ReservationStatusConfirmed, model.ReservationStatusCompleted,
		model.ReservationStatusCancelled, model.ReservationStatusNoShow:
	default:
		return nil, ErrInvalidTransition
	}
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.SlotKey(res.ShopID, res.ReservedDate))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Re-read under the key: a concurrent call may have transitioned
	// the reservation between the lookup above and lock acquisition.
	res, err = s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.CanTransitionTo(newStatus) {
		return nil, ErrInvalidTransition
	}
	now := time.Now().UTC()
	if err := s.reservations.UpdateStatusTx(ctx, tx, reservationID, newStatus, now); err != nil {
		return nil, err
	}
	entry := &model.ReservationStatusLog{
		ReservationID: reservationID,
		Status:        newStatus,
		Reason:        reason,
		Actor:         actor,
	}
	if err := s.statusLogs.InsertTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.Status = newStatus
	res.UpdatedAt = now
	return res, nil
}

// Reschedule moves a live (pending or confirmed) reservation to a new
// slot, preserving identity and status. Conflict validation re-runs
// under the new slot's key with the reservation itself excluded, so
// moving to the currently occupied slot trivially succeeds. On
// success one status-log entry is appended carrying the unchanged
// status — the log records when the move happened. On conflict the
// reservation is left untouched and no log entry is written.
func (s *ReservationService) Reschedule(ctx context.Context, reservationID uint64, newDate, newStart, newEnd, reason, actor string) (*model.Reservation, error) {
	if err := validateSlot(newDate, newStart, newEnd); err != nil {
		return nil, err
	}
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.Reschedulable() {
		return nil, ErrInvalidTransition
	}

	release, err := s.locker.Acquire(ctx, lock.SlotKey(res.ShopID, newDate))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err = s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.Reschedulable() {
		return nil, ErrInvalidTransition
	}
	overlapping, err := s.reservations.FindOverlappingTx(ctx, tx, res.ShopID, newDate, newStart, newEnd, reservationID)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrSlotUnavailable
	}
	now := time.Now().UTC()
	if err := s.reservations.UpdateSlotTx(ctx, tx, reservationID, newDate, newStart, newEnd, now); err != nil {
		return nil, err
	}
	entry := &model.ReservationStatusLog{
		ReservationID: reservationID,
		Status:        res.Status,
		Reason:        reason,
		Actor:         actor,
	}
	if err := s.statusLogs.InsertTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.ReservedDate = newDate
	res.StartTime = newStart
	res.EndTime = newEnd
	res.UpdatedAt = now
	return res, nil
}

// Get returns a reservation by id.
func (s *ReservationService) Get(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, reservationID)
}

// StatusLog returns the reservation's audit trail newest-first. The
// reservation must exist; the first (oldest) entry is always the
// `pending` row written at creation.
func (s *ReservationService) StatusLog(ctx context.Context, reservationID uint64) ([]model.ReservationStatusLog, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.statusLogs.ListByReservation(ctx, reservationID)
}

// ListByUser returns the user's reservations newest-first.
func (s *ReservationService) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.reservations.ListByUser(ctx, userID)
}
