package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/ModawnAI/everything-backend-sub017/internal/lock"
	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
)

// The service tests run against an in-memory SQLite database. The
// repositories use only portable SQL (`?` placeholders, no vendor
// functions, no row locking — mutual exclusion comes from the named
// lock manager), so the same code paths exercised here run unchanged
// against MySQL in production. A single connection keeps SQLite's
// writer model out of the picture.
const testSchema = `
CREATE TABLE users (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    display_name     TEXT NOT NULL,
    email            TEXT NOT NULL UNIQUE,
    total_points     INTEGER NOT NULL DEFAULT 0,
    available_points INTEGER NOT NULL DEFAULT 0,
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL
);
CREATE TABLE shops (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_name TEXT NOT NULL,
    name       TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'pending_approval',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE TABLE services (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    shop_id      INTEGER NOT NULL,
    name         TEXT NOT NULL,
    duration_min INTEGER NOT NULL DEFAULT 0,
    price_cents  INTEGER NOT NULL DEFAULT 0,
    is_active    INTEGER NOT NULL DEFAULT 1,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL
);
CREATE TABLE reservations (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL,
    shop_id       INTEGER NOT NULL,
    service_id    INTEGER NOT NULL,
    reserved_date TEXT NOT NULL,
    start_time    TEXT NOT NULL,
    end_time      TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'pending',
    notes         TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE reservation_status_logs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    reservation_id INTEGER NOT NULL,
    status         TEXT NOT NULL,
    reason         TEXT NOT NULL DEFAULT '',
    actor          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMP NOT NULL
);
CREATE TABLE point_transactions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     INTEGER NOT NULL,
    amount      INTEGER NOT NULL,
    tx_type     TEXT NOT NULL,
    source_type TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'completed',
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
CREATE TABLE shop_approval_logs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    shop_id    INTEGER NOT NULL,
    status     TEXT NOT NULL,
    reason     TEXT NOT NULL DEFAULT '',
    actor      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
`

// testEnv bundles everything a service test needs.
type testEnv struct {
	db           *sql.DB
	locker       *lock.MemoryLocker
	reservations *ReservationService
	points       *PointsService
	shops        *ShopService

	reservationRepo *repository.ReservationRepo
	statusLogRepo   *repository.StatusLogRepo
	userRepo        *repository.UserRepo
	shopRepo        *repository.ShopRepo
	serviceRepo     *repository.ServiceRepo
	pointRepo       *repository.PointRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	locker := lock.NewMemoryLocker(3 * time.Second)
	env := &testEnv{
		db:              db,
		locker:          locker,
		reservationRepo: repository.NewReservationRepo(db),
		statusLogRepo:   repository.NewStatusLogRepo(db),
		userRepo:        repository.NewUserRepo(db),
		shopRepo:        repository.NewShopRepo(db),
		serviceRepo:     repository.NewServiceRepo(db),
		pointRepo:       repository.NewPointRepo(db),
	}
	env.reservations = NewReservationService(locker, env.reservationRepo, env.statusLogRepo, env.userRepo, env.shopRepo, env.serviceRepo)
	env.points = NewPointsService(locker, env.pointRepo, env.userRepo)
	env.shops = NewShopService(locker, env.shopRepo)
	return env
}

func (e *testEnv) insertUser(t *testing.T, name string) uint64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := e.db.Exec(
		`INSERT INTO users (display_name, email, total_points, available_points, created_at, updated_at) VALUES (?, ?, 0, 0, ?, ?)`,
		name, name+"@example.com", now, now,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func (e *testEnv) insertShop(t *testing.T, name string, status model.ShopStatus) uint64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := e.db.Exec(
		`INSERT INTO shops (owner_name, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name+" owner", name, string(status), now, now,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func (e *testEnv) insertService(t *testing.T, shopID uint64, name string, active bool) uint64 {
	t.Helper()
	now := time.Now().UTC()
	activeInt := 0
	if active {
		activeInt = 1
	}
	res, err := e.db.Exec(
		`INSERT INTO services (shop_id, name, duration_min, price_cents, is_active, created_at, updated_at) VALUES (?, ?, 60, 5000, ?, ?, ?)`,
		shopID, name, activeInt, now, now,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// bookingFixture seeds an active shop with one service and a user and
// returns a ready-to-use create input for the given slot.
func (e *testEnv) bookingFixture(t *testing.T, date, start, end string) CreateReservationInput {
	t.Helper()
	userID := e.insertUser(t, "customer")
	shopID := e.insertShop(t, "glow salon", model.ShopStatusActive)
	serviceID := e.insertService(t, shopID, "haircut", true)
	return CreateReservationInput{
		UserID:    userID,
		ShopID:    shopID,
		ServiceID: serviceID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Actor:     "user:customer",
	}
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
