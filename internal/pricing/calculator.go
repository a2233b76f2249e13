package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelarde/shopflow-backend/pkg/config"
)

// Line is a (unit price, quantity) pair fed into the calculator.
type Line struct {
	UnitPriceCents int64
	Quantity       int
}

// Totals is the computed price breakdown, all amounts in cents.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	TotalCents    int64
}

// Calculator derives order totals from configured constants. It is pure:
// the same lines always produce the same totals.
type Calculator struct {
	taxRate               decimal.Decimal
	freeShippingThreshold int64
	shippingCostCents     int64
}

// NewCalculator builds a calculator from the pricing configuration.
func NewCalculator(cfg config.PricingConfig) *Calculator {
	return &Calculator{
		taxRate:               decimal.NewFromFloat(cfg.TaxRate),
		freeShippingThreshold: cfg.FreeShippingThresholdCents,
		shippingCostCents:     cfg.ShippingCostCents,
	}
}

// Compute returns the totals for the provided lines.
// Tax is rounded to whole cents, half away from zero.
func (c *Calculator) Compute(lines []Line) (Totals, error) {
	var subtotal int64
	for i, line := range lines {
		if line.UnitPriceCents < 0 {
			return Totals{}, fmt.Errorf("line %d: negative unit price %d", i, line.UnitPriceCents)
		}
		if line.Quantity < 0 {
			return Totals{}, fmt.Errorf("line %d: negative quantity %d", i, line.Quantity)
		}
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}

	tax := decimal.NewFromInt(subtotal).Mul(c.taxRate).Round(0).IntPart()

	var shipping int64
	if subtotal < c.freeShippingThreshold {
		shipping = c.shippingCostCents
	}

	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: shipping,
		TotalCents:    subtotal + tax + shipping,
	}, nil
}
