package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
)

func TestRecord_EarnThenSpend(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "saver")

	entry, err := env.points.Record(ctx, userID, 1000, model.PointTxEarned, "reservation", "completed visit")
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
	assert.Equal(t, model.PointTxCompleted, entry.Status)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 1000, AvailablePoints: 1000}, balance)

	_, err = env.points.Record(ctx, userID, -400, model.PointTxSpent, "reservation", "redeemed at checkout")
	require.NoError(t, err)

	balance, err = env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 600, AvailablePoints: 600}, balance)
}

func TestRecord_EnforcesSignConvention(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "strict")

	cases := []struct {
		name   string
		amount int64
		txType model.PointTransactionType
	}{
		{"earned must be positive", -100, model.PointTxEarned},
		{"earned zero", 0, model.PointTxEarned},
		{"spent must be negative", 100, model.PointTxSpent},
		{"spent zero", 0, model.PointTxSpent},
		{"expired must be negative", 50, model.PointTxExpired},
		{"adjusted nonzero", 0, model.PointTxAdjusted},
		{"unknown type", 100, model.PointTransactionType("bonus")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.points.Record(ctx, userID, tc.amount, tc.txType, "", "")
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	// Adjustments go both ways.
	_, err := env.points.Record(ctx, userID, 250, model.PointTxAdjusted, "support", "goodwill credit")
	require.NoError(t, err)
	_, err = env.points.Record(ctx, userID, -50, model.PointTxAdjusted, "support", "correction")
	require.NoError(t, err)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 200, AvailablePoints: 200}, balance)

	_, err = env.points.Record(ctx, 9999, 100, model.PointTxEarned, "", "")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestHold_LowersAvailableOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "holder")

	_, err := env.points.Record(ctx, userID, 1000, model.PointTxEarned, "reservation", "")
	require.NoError(t, err)

	hold, err := env.points.Hold(ctx, userID, -300, model.PointTxSpent, "reservation", "redemption hold")
	require.NoError(t, err)
	assert.Equal(t, model.PointTxPending, hold.Status)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 1000, AvailablePoints: 700}, balance)

	// Holds are negative by definition.
	_, err = env.points.Hold(ctx, userID, 300, model.PointTxEarned, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestComplete_FoldsHoldExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "spender")

	_, err := env.points.Record(ctx, userID, 1000, model.PointTxEarned, "reservation", "")
	require.NoError(t, err)
	hold, err := env.points.Hold(ctx, userID, -300, model.PointTxSpent, "reservation", "")
	require.NoError(t, err)

	done, err := env.points.Complete(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PointTxCompleted, done.Status)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 700, AvailablePoints: 700}, balance)

	// Replaying the completion must not double-charge.
	_, err = env.points.Complete(ctx, hold.ID)
	assert.ErrorIs(t, err, ErrTransactionFinalized)
	_, err = env.points.Cancel(ctx, hold.ID)
	assert.ErrorIs(t, err, ErrTransactionFinalized)

	balance, err = env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 700, AvailablePoints: 700}, balance)

	_, err = env.points.Complete(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrPointTransactionNotFound)
}

func TestCancel_ReleasesHold(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "cautious")

	_, err := env.points.Record(ctx, userID, 500, model.PointTxEarned, "promotion", "")
	require.NoError(t, err)
	hold, err := env.points.Hold(ctx, userID, -200, model.PointTxSpent, "reservation", "")
	require.NoError(t, err)

	cancelled, err := env.points.Cancel(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PointTxCancelled, cancelled.Status)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 500, AvailablePoints: 500}, balance)

	// A cancelled hold stays cancelled.
	_, err = env.points.Complete(ctx, hold.ID)
	assert.ErrorIs(t, err, ErrTransactionFinalized)
}

func TestConcurrentDoubleComplete_OneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "raced")

	_, err := env.points.Record(ctx, userID, 1000, model.PointTxEarned, "reservation", "")
	require.NoError(t, err)
	hold, err := env.points.Hold(ctx, userID, -300, model.PointTxSpent, "reservation", "")
	require.NoError(t, err)

	startCh := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-startCh
			_, err := env.points.Complete(ctx, hold.ID)
			errs <- err
		}()
	}
	close(startCh)
	wg.Wait()
	close(errs)

	var ok, finalized int
	for err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, ErrTransactionFinalized) {
			finalized++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, finalized)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 700, AvailablePoints: 700}, balance)
}

func TestConcurrentRecords_SumExactly(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "busy")

	const n = 8
	startCh := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-startCh
			_, err := env.points.Record(ctx, userID, 100, model.PointTxEarned, "promotion", "")
			errs <- err
		}()
	}
	close(startCh)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: n * 100, AvailablePoints: n * 100}, balance)
}

func TestReconcile_RepairsDriftAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "audited")

	_, err := env.points.Record(ctx, userID, 800, model.PointTxEarned, "reservation", "")
	require.NoError(t, err)
	_, err = env.points.Hold(ctx, userID, -300, model.PointTxSpent, "reservation", "")
	require.NoError(t, err)

	want := model.PointBalance{TotalPoints: 800, AvailablePoints: 500}

	// Corrupt the cached columns behind the service's back.
	_, err = env.db.Exec(`UPDATE users SET total_points = 1, available_points = 2 WHERE id = ?`, userID)
	require.NoError(t, err)

	cached, rebuilt, err := env.points.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.PointBalance{TotalPoints: 1, AvailablePoints: 2}, cached, "drifted cache reported")
	assert.Equal(t, want, rebuilt)

	balance, err := env.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, want, balance)

	// Second pass sees no drift and changes nothing.
	cached, rebuilt, err = env.points.Reconcile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, want, cached)
	assert.Equal(t, want, rebuilt)
}

func TestHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	userID := env.insertUser(t, "reader")

	first, err := env.points.Record(ctx, userID, 100, model.PointTxEarned, "promotion", "signup")
	require.NoError(t, err)
	second, err := env.points.Record(ctx, userID, 200, model.PointTxEarned, "reservation", "visit")
	require.NoError(t, err)

	entries, err := env.points.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)

	_, err = env.points.History(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
