package commission

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

func TestComputePercentAndFixed(t *testing.T) {
	items := []ItemTerms{
		{ProductID: 1, ProductName: "Cafe", Qty: 10, Subtotal: d("58.00"), Type: TypePercent, Value: d("5")},
		{ProductID: 2, ProductName: "Arroz", Qty: 4, Subtotal: d("12.00"), Type: TypeFixed, Value: d("0.25")},
	}

	details, total := Compute(items, true)
	require.Len(t, details, 2)
	require.True(t, details[0].Amount.Equal(d("2.90")))
	require.True(t, details[1].Amount.Equal(d("1.00")))
	require.True(t, total.Equal(d("3.90")))
}

func TestComputeExcludesZeroValueItems(t *testing.T) {
	items := []ItemTerms{
		{ProductID: 1, Qty: 2, Subtotal: d("20.00"), Type: TypePercent, Value: decimal.Zero},
		{ProductID: 2, Qty: 1, Subtotal: d("10.00"), Type: TypePercent, Value: d("10")},
	}

	details, total := Compute(items, true)
	require.Len(t, details, 1)
	require.Equal(t, int64(2), details[0].ProductID)
	require.True(t, total.Equal(d("1.00")))
}

func TestComputeWithoutSellerIsEmpty(t *testing.T) {
	items := []ItemTerms{
		{ProductID: 1, Qty: 2, Subtotal: d("20.00"), Type: TypePercent, Value: d("10")},
	}

	details, total := Compute(items, false)
	require.Empty(t, details)
	require.True(t, total.IsZero())
}
