// Package exchange converts amounts between currencies using live rate tables.
package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/domain/shared"
)

// ErrRateUnavailable wraps every failure to obtain a usable rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// RateProvider returns the rates for converting one unit of base into each
// currency it knows.
type RateProvider interface {
	Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

type Converter struct {
	rates RateProvider
}

func NewConverter(rates RateProvider) *Converter {
	return &Converter{rates: rates}
}

// Convert expresses amount, given in from, in to. The result is rounded half
// away from zero to MoneyScale. Identical currencies never reach the provider.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	rates, err := c.rates.Rates(ctx, from)
	if err != nil {
		if !errors.Is(err, ErrRateUnavailable) {
			err = fmt.Errorf("%w: %v", ErrRateUnavailable, err)
		}
		return decimal.Zero, err
	}

	rate, ok := rates[to]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no %s rate for %s", ErrRateUnavailable, to, from)
	}
	return amount.Mul(rate).Round(shared.MoneyScale), nil
}
