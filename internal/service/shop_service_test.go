package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ModawnAI/everything-backend-sub017/internal/model"
	"github.com/ModawnAI/everything-backend-sub017/internal/repository"
)

func TestShopTransition_ApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	shopID := env.insertShop(t, "new salon", model.ShopStatusPendingApproval)

	shop, err := env.shops.Transition(ctx, shopID, model.ShopStatusActive, "documents verified", "admin:kim")
	require.NoError(t, err)
	assert.Equal(t, model.ShopStatusActive, shop.Status)

	logs, err := env.shops.ApprovalLog(ctx, shopID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ShopStatusActive, logs[0].Status)
	assert.Equal(t, "documents verified", logs[0].Reason)
	assert.Equal(t, "admin:kim", logs[0].Actor)
}

func TestShopTransition_SuspendAndReinstate(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	shopID := env.insertShop(t, "flaky salon", model.ShopStatusActive)

	shop, err := env.shops.Transition(ctx, shopID, model.ShopStatusSuspended, "policy violation", "admin:kim")
	require.NoError(t, err)
	assert.Equal(t, model.ShopStatusSuspended, shop.Status)

	shop, err = env.shops.Transition(ctx, shopID, model.ShopStatusActive, "violation resolved", "admin:kim")
	require.NoError(t, err)
	assert.Equal(t, model.ShopStatusActive, shop.Status)

	logs, err := env.shops.ApprovalLog(ctx, shopID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ShopStatusActive, logs[0].Status, "newest entry first")
	assert.Equal(t, model.ShopStatusSuspended, logs[1].Status)
}

func TestShopTransition_ClosedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	shopID := env.insertShop(t, "retired salon", model.ShopStatusActive)

	_, err := env.shops.Transition(ctx, shopID, model.ShopStatusClosed, "owner request", "admin:kim")
	require.NoError(t, err)

	for _, status := range []model.ShopStatus{
		model.ShopStatusActive,
		model.ShopStatusSuspended,
	} {
		_, err := env.shops.Transition(ctx, shopID, status, "", "admin:kim")
		assert.ErrorIs(t, err, ErrInvalidTransition, "closed → %s", status)
	}
}

func TestShopTransition_RejectsIllegalMoves(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	shopID := env.insertShop(t, "waiting salon", model.ShopStatusPendingApproval)

	// pending_approval can only go active; suspension and closure need
	// an approved shop first.
	_, err := env.shops.Transition(ctx, shopID, model.ShopStatusSuspended, "", "admin:kim")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.shops.Transition(ctx, shopID, model.ShopStatusClosed, "", "admin:kim")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// pending_approval is not a transition target, nor are unknowns.
	_, err = env.shops.Transition(ctx, shopID, model.ShopStatusPendingApproval, "", "admin:kim")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.shops.Transition(ctx, shopID, model.ShopStatus("archived"), "", "admin:kim")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Failed transitions leave no audit entry.
	logs, err := env.shops.ApprovalLog(ctx, shopID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = env.shops.Transition(ctx, 9999, model.ShopStatusActive, "", "admin:kim")
	assert.ErrorIs(t, err, repository.ErrShopNotFound)
}

func TestShopTransition_ConcurrentDoubleApproveAppliesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	shopID := env.insertShop(t, "popular salon", model.ShopStatusPendingApproval)

	startCh := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-startCh
			_, err := env.shops.Transition(ctx, shopID, model.ShopStatusActive, "approve", "admin:kim")
			errs <- err
		}()
	}
	close(startCh)
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, ErrInvalidTransition) {
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	logs, err := env.shops.ApprovalLog(ctx, shopID)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "the double-submit must not log twice")
}

func TestShopGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxT(t)
	shopID := env.insertShop(t, "lookup salon", model.ShopStatusActive)

	shop, err := env.shops.Get(ctx, shopID)
	require.NoError(t, err)
	assert.Equal(t, "lookup salon", shop.Name)
	assert.Equal(t, model.ShopStatusActive, shop.Status)

	_, err = env.shops.Get(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrShopNotFound)

	_, err = env.shops.ApprovalLog(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrShopNotFound)
}
