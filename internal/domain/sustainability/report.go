package sustainability

import (
	"github.com/shopspring/decimal"
)

// Report is the order-level sustainability summary handed to buyers after
// checkout.
type Report struct {
	OrderID                  string          `json:"orderId"`
	TotalCO2Saved            decimal.Decimal `json:"totalCO2Saved"`
	TotalRecyclableWeight    decimal.Decimal `json:"totalRecyclableWeight"`
	TotalBiodegradableWeight decimal.Decimal `json:"totalBiodegradableWeight"`
	CO2ReductionPct          decimal.Decimal `json:"co2Reduction"`
	Tips                     []string        `json:"tips,omitempty"`
}

// BuildReport produces the order-level report for the given lines. The CO2
// reduction percentage is the quantity-weighted mean of each product's
// comparison-to-standard, counting only products that beat the standard.
func BuildReport(orderID string, lines []Line) Report {
	impact := Aggregate(lines)

	report := Report{
		OrderID:                  orderID,
		TotalCO2Saved:            impact.TotalCO2Saved,
		TotalRecyclableWeight:    impact.TotalRecyclableWeight,
		TotalBiodegradableWeight: decimal.Zero,
		CO2ReductionPct:          decimal.Zero,
	}

	var (
		weightedReduction = decimal.Zero
		totalQty          = decimal.Zero
	)
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		totalQty = totalQty.Add(qty)

		weight := line.Product.WeightGrams.Mul(qty)
		bio := weight.Mul(line.Product.Sustainability.Biodegradability.Percentage).Div(hundred)
		report.TotalBiodegradableWeight = report.TotalBiodegradableWeight.Add(bio)

		if comparison := line.Product.Sustainability.CarbonFootprint.ComparisonToStandard; comparison.IsNegative() {
			weightedReduction = weightedReduction.Add(comparison.Abs().Mul(qty))
		}
	}
	if totalQty.IsPositive() {
		report.CO2ReductionPct = weightedReduction.Div(totalQty)
	}

	report.Tips = tips(report)
	return report
}

func tips(r Report) []string {
	var out []string
	if r.TotalRecyclableWeight.IsPositive() {
		out = append(out, "Flatten and sort packaging before recycling to keep material streams clean.")
	}
	if r.TotalBiodegradableWeight.IsPositive() {
		out = append(out, "Compostable components break down fastest in industrial composting facilities.")
	}
	if r.TotalCO2Saved.IsPositive() {
		out = append(out, "Combining orders into fewer shipments reduces transport emissions further.")
	}
	return out
}
