// Package sustainability rolls per-item environmental metrics up into cart
// and order level impact figures. All computations are pure functions of
// their inputs; re-running them on the same line set yields the same result.
package sustainability

import (
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/product"
)

var hundred = decimal.NewFromInt(100)

// Line pairs a product with an ordered quantity for impact computation.
type Line struct {
	Product  product.Product
	Quantity int
}

// Impact is the cart-level environmental roll-up. Weights are in grams,
// matching the product weight unit.
type Impact struct {
	TotalCO2Saved         decimal.Decimal `json:"totalCO2Saved"`
	TotalRecyclableWeight decimal.Decimal `json:"totalRecyclableWeight"`
}

// Aggregate computes the impact across all lines. CO2 savings come from the
// product's comparison-to-standard percentage: negative values mean the
// product emits less than a conventional equivalent, so their magnitude
// counts as savings; positive values contribute nothing.
func Aggregate(lines []Line) Impact {
	impact := Impact{
		TotalCO2Saved:         decimal.Zero,
		TotalRecyclableWeight: decimal.Zero,
	}

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		weight := line.Product.WeightGrams.Mul(qty)

		if saved := co2SavedShare(line.Product); saved.IsPositive() {
			impact.TotalCO2Saved = impact.TotalCO2Saved.Add(weight.Mul(saved))
		}

		recyclable := weight.Mul(line.Product.Sustainability.Recyclability.Percentage).Div(hundred)
		impact.TotalRecyclableWeight = impact.TotalRecyclableWeight.Add(recyclable)
	}

	return impact
}

// co2SavedShare returns the fraction of the product's weight counted as CO2
// saved: |comparisonToStandard|/100 for negative comparisons, zero otherwise.
func co2SavedShare(p product.Product) decimal.Decimal {
	comparison := p.Sustainability.CarbonFootprint.ComparisonToStandard
	if !comparison.IsNegative() {
		return decimal.Zero
	}
	return comparison.Abs().Div(hundred)
}
