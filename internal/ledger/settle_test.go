package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestApplyPartialPayment(t *testing.T) {
	recorded, balance, st, err := Apply(d("100.00"), d("100.00"), d("40.00"))
	require.NoError(t, err)
	require.True(t, recorded.Equal(d("40.00")))
	require.True(t, balance.Equal(d("60.00")))
	require.Equal(t, StatusPartial, st)
}

func TestApplyFullSettlementClamp(t *testing.T) {
	// 96 on a balance of 100 crosses the 95% threshold and is recorded as
	// the full balance.
	recorded, balance, st, err := Apply(d("100.00"), d("100.00"), d("96.00"))
	require.NoError(t, err)
	require.True(t, recorded.Equal(d("100.00")))
	require.True(t, balance.IsZero())
	require.Equal(t, StatusPaid, st)
}

func TestApplyBelowClampThresholdStaysPartial(t *testing.T) {
	recorded, balance, st, err := Apply(d("100.00"), d("100.00"), d("94.99"))
	require.NoError(t, err)
	require.True(t, recorded.Equal(d("94.99")))
	require.True(t, balance.Equal(d("5.01")))
	require.Equal(t, StatusPartial, st)
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	_, _, _, err := Apply(d("100.00"), d("100.00"), decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, _, _, err = Apply(d("100.00"), d("100.00"), d("-5.00"))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyRejectsOverpayment(t *testing.T) {
	_, balance, _, err := Apply(d("100.00"), d("100.00"), d("150.00"))
	require.ErrorIs(t, err, ErrExceedsBalance)
	require.True(t, balance.Equal(d("100.00")))
}

func TestApplyRejectsPaymentOnSettledBalance(t *testing.T) {
	_, _, _, err := Apply(d("100.00"), decimal.Zero, d("10.00"))
	require.ErrorIs(t, err, ErrExceedsBalance)
}

func TestReverseRestoresBalanceExactly(t *testing.T) {
	recorded, balance, _, err := Apply(d("58.00"), d("58.00"), d("20.00"))
	require.NoError(t, err)

	restored, st := Reverse(d("58.00"), balance, recorded)
	require.True(t, restored.Equal(d("58.00")))
	require.Equal(t, StatusPending, st)
}

func TestReverseCapsAtTotal(t *testing.T) {
	restored, st := Reverse(d("50.00"), d("45.00"), d("20.00"))
	require.True(t, restored.Equal(d("50.00")))
	require.Equal(t, StatusPending, st)
}

func TestStatusForEpsilonResidue(t *testing.T) {
	// Floating residue below a cent counts as settled.
	require.Equal(t, StatusPaid, StatusFor(d("100.00"), d("0.009")))
	require.Equal(t, StatusPartial, StatusFor(d("100.00"), d("0.02")))
	require.Equal(t, StatusPending, StatusFor(d("100.00"), d("100.00")))
}

func TestItemDelta(t *testing.T) {
	old := []Line{{ProductID: 1, Qty: 5}, {ProductID: 2, Qty: 3}}
	next := []Line{{ProductID: 1, Qty: 8}, {ProductID: 3, Qty: 2}}

	deltas := ItemDelta(old, next)
	require.Equal(t, map[int64]float64{1: 3, 2: -3, 3: 2}, deltas)
}

func TestItemDeltaIdenticalSetsIsEmpty(t *testing.T) {
	items := []Line{{ProductID: 1, Qty: 5}, {ProductID: 2, Qty: 3}}
	require.Empty(t, ItemDelta(items, items))
}

func TestItemDeltaAggregatesDuplicateLines(t *testing.T) {
	old := []Line{{ProductID: 1, Qty: 2}, {ProductID: 1, Qty: 3}}
	next := []Line{{ProductID: 1, Qty: 5}}
	require.Empty(t, ItemDelta(old, next))
}
