package fx

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// HardCurrency is the currency all balances are tracked in.
var HardCurrency = currency.USD

// localCurrencyCode is the ISO 4217 code of the display currency. The
// currency table shipped with x/text predates VES, so resolution must not
// assume the table knows it.
const localCurrencyCode = "VES"

// LocalCurrencyCode returns the display currency code, canonicalized
// through the currency table when it is known there.
func LocalCurrencyCode() string {
	if unit, err := currency.ParseISO(localCurrencyCode); err == nil {
		return unit.String()
	}
	return localCurrencyCode
}

// Format renders an amount with an ISO currency code, e.g. "USD 58.00".
func Format(code string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", code, amount.StringFixed(2))
}
