package integrity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/modules/integrity"
	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/testutil/memstore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type drift struct {
	danglingVendor uuid.UUID
	orphanOwner    uuid.UUID
	bites          uuid.UUID
	other          uuid.UUID
	kept           uuid.UUID
	unlisted       uuid.UUID
	stranded       uuid.UUID
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

// seedDrift stores one instance of every kind of drift the sweep repairs.
func seedDrift(store *memstore.Store) drift {
	d := drift{
		danglingVendor: uuid.New(),
		orphanOwner:    uuid.New(),
		bites:          uuid.New(),
		other:          uuid.New(),
		kept:           uuid.New(),
		unlisted:       uuid.New(),
		stranded:       uuid.New(),
	}
	otherOwner := uuid.New()

	store.PutVendor(&vendor.Vendor{ID: d.danglingVendor, Email: "ghost@example.com", FirmID: ptr(uuid.New())})
	store.PutVendor(&vendor.Vendor{ID: d.orphanOwner, Email: "owner@example.com"})
	store.PutVendor(&vendor.Vendor{ID: otherOwner, Email: "other@example.com", FirmID: ptr(d.other)})

	owned := product.Product{ID: uuid.New(), Name: "Paneer", Price: decimal.NewFromInt(5), FirmID: ptr(d.other)}
	store.PutFirm(&firm.Firm{
		ID:       d.bites,
		Name:     "Tasty Bites",
		VendorID: ptr(d.orphanOwner),
		Products: []uuid.UUID{uuid.New(), owned.ID, d.kept},
	})
	store.PutFirm(&firm.Firm{ID: d.other, Name: "Other", VendorID: ptr(otherOwner), Products: []uuid.UUID{owned.ID}})

	store.PutProduct(&owned)
	store.PutProduct(&product.Product{ID: d.kept, Name: "Dosa", FirmID: ptr(d.bites)})
	store.PutProduct(&product.Product{ID: d.unlisted, Name: "Idli", FirmID: ptr(d.bites)})
	store.PutProduct(&product.Product{ID: d.stranded, Name: "Vada", FirmID: ptr(uuid.New())})
	return d
}

func TestSweepRepairsDrift(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	d := seedDrift(store)

	core, logs := observer.New(zapcore.InfoLevel)
	r := integrity.NewReconciler(store, store, zap.New(core))

	report, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, integrity.Report{
		VendorLinksCleared:  1,
		VendorsRelinked:     1,
		FirmSetsPruned:      1,
		FirmSetsFilled:      1,
		ProductLinksCleared: 1,
	}, report)
	assert.Equal(t, 1, logs.FilterMessage("repaired reference drift").Len())

	ghost, err := store.GetVendorByID(ctx, d.danglingVendor)
	require.NoError(t, err)
	assert.Nil(t, ghost.FirmID)

	owner, err := store.GetVendorByID(ctx, d.orphanOwner)
	require.NoError(t, err)
	require.NotNil(t, owner.FirmID)
	assert.Equal(t, d.bites, *owner.FirmID)

	bites, err := store.GetFirmByID(ctx, d.bites)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{d.kept, d.unlisted}, bites.Products)

	stranded, err := store.GetProductByID(ctx, d.stranded)
	require.NoError(t, err)
	assert.Nil(t, stranded.FirmID)

	again, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Total())
}

func TestSweepRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	d := seedDrift(store)

	boom := errors.New("boom")
	store.FailOn("ClearDanglingProductLinks", boom)

	_, err := integrity.NewReconciler(store, store, nil).Sweep(ctx)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "clear product links")

	ghost, err := store.GetVendorByID(ctx, d.danglingVendor)
	require.NoError(t, err)
	assert.NotNil(t, ghost.FirmID, "earlier steps must be rolled back")

	bites, err := store.GetFirmByID(ctx, d.bites)
	require.NoError(t, err)
	assert.Len(t, bites.Products, 3)
}

func TestRun(t *testing.T) {
	store := memstore.New()
	seedDrift(store)
	r := integrity.NewReconciler(store, store, nil)

	t.Run("disabled interval returns at once", func(t *testing.T) {
		assert.NoError(t, r.Run(context.Background(), 0))
		v, err := store.GetVendorByEmail(context.Background(), "ghost@example.com")
		require.NoError(t, err)
		assert.NotNil(t, v.FirmID)
	})

	t.Run("sweeps before waiting and stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx, time.Hour) }()

		assert.Eventually(t, func() bool {
			v, err := store.GetVendorByEmail(context.Background(), "ghost@example.com")
			return err == nil && v.FirmID == nil
		}, time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Run did not stop after cancel")
		}
	})
}
