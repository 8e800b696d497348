package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingConfig holds the fee rates and constants. They are configuration,
// never baked into the calculator, so operators can change them without a
// code change.
type PricingConfig struct {
	// ServiceRate is applied to the subtotal, e.g. 0.05 for 5%.
	ServiceRate decimal.Decimal
	// ProcessingRate is applied to the discounted subtotal, e.g. 0.029.
	ProcessingRate decimal.Decimal
	// ProcessingFixed is added on top of the processing rate, e.g. 0.30.
	ProcessingFixed decimal.Decimal
}

// PriceLine is one line item as the calculator sees it: quantity times the
// unit price captured at order time.
type PriceLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Quote is the fully derived money breakdown for an order.
type Quote struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	ServiceFee    decimal.Decimal
	ProcessingFee decimal.Decimal
	Total         decimal.Decimal
}

// CalculateQuote derives subtotal, fees and total from line items and an
// already-clamped discount. Pure function; every intermediate figure is
// rounded to 2 decimal places to match currency semantics.
func CalculateQuote(cfg PricingConfig, lines []PriceLine, discount decimal.Decimal) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, fmt.Errorf("no line items")
	}
	if discount.IsNegative() {
		return Quote{}, fmt.Errorf("negative discount %s", discount)
	}

	subtotal := decimal.Zero
	for i, line := range lines {
		if line.Quantity <= 0 {
			return Quote{}, fmt.Errorf("line %d: quantity must be positive", i)
		}
		if line.UnitPrice.IsNegative() {
			return Quote{}, fmt.Errorf("line %d: negative unit price %s", i, line.UnitPrice)
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		subtotal = subtotal.Add(lineTotal)
	}

	if discount.GreaterThan(subtotal) {
		return Quote{}, fmt.Errorf("discount %s exceeds subtotal %s", discount, subtotal)
	}

	serviceFee := subtotal.Mul(cfg.ServiceRate).Round(2)
	processingFee := subtotal.Sub(discount).Mul(cfg.ProcessingRate).Round(2).Add(cfg.ProcessingFixed).Round(2)
	total := subtotal.Sub(discount).Add(serviceFee).Add(processingFee)

	if total.IsNegative() {
		return Quote{}, fmt.Errorf("negative total %s", total)
	}

	return Quote{
		Subtotal:      subtotal,
		Discount:      discount,
		ServiceFee:    serviceFee,
		ProcessingFee: processingFee,
		Total:         total,
	}, nil
}
