// Package product defines the immutable catalog records the cart engine
// computes over. Products are owned by the catalog collaborator; the engine
// never mutates or persists them.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Status is the publication state of a product.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID              string                `json:"id"`
	Slug            string                `json:"slug"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	SKU             string                `json:"sku"`
	Category        string                `json:"category"`
	Price           money.Money           `json:"price"`
	BulkPricing     []BulkPricingTier     `json:"bulkPricing,omitempty"`
	Inventory       Inventory             `json:"inventory"`
	Dimensions      Dimensions            `json:"dimensions"`
	WeightGrams     decimal.Decimal       `json:"weight"`
	Materials       []Material            `json:"materials,omitempty"`
	Sustainability  Sustainability        `json:"sustainability"`
	Certifications  []Certification       `json:"certifications,omitempty"`
	Customizations  []CustomizationOption `json:"customizationOptions,omitempty"`
	LeadTimeDays    int                   `json:"leadTime"`
	MinimumOrderQty int                   `json:"minimumOrderQuantity"`
	Tags            []string              `json:"tags,omitempty"`
	Status          Status                `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// BulkPricingTier is one quantity band of a product's volume pricing table.
// Tiers are stored ordered by MinQuantity ascending; a MaxQuantity of zero
// means the band is open-ended. Price is the absolute per-unit price for the
// band; DiscountPct is display metadata and is never reapplied arithmetically.
type BulkPricingTier struct {
	MinQuantity int             `json:"minQuantity"`
	MaxQuantity int             `json:"maxQuantity,omitempty"`
	Price       money.Money     `json:"price"`
	DiscountPct decimal.Decimal `json:"discount"`
}

// Contains reports whether the given quantity falls inside the tier's band.
func (t BulkPricingTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == 0 || quantity <= t.MaxQuantity
}

// Inventory tracks stock levels for a product.
type Inventory struct {
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Incoming  int `json:"incoming,omitempty"`
}

// Sellable returns the quantity that can actually be promised to a buyer.
func (i Inventory) Sellable() int {
	n := i.Available - i.Reserved
	if n < 0 {
		return 0
	}
	return n
}

// Dimensions holds the physical size of a packed product.
type Dimensions struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Unit   string          `json:"unit"`
}

// Material describes one component material of a product.
type Material struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Percentage    decimal.Decimal `json:"percentage"`
	Recyclable    bool            `json:"recyclable"`
	Biodegradable bool            `json:"biodegradable"`
	Compostable   bool            `json:"compostable"`
	Source        string          `json:"source"`
}

// Sustainability carries the environmental metrics of a product. Read-only;
// never mutated by the engine.
type Sustainability struct {
	CarbonFootprint  CarbonFootprint  `json:"carbonFootprint"`
	Recyclability    Recyclability    `json:"recyclability"`
	Biodegradability Biodegradability `json:"biodegradability"`
	WaterUsage       WaterUsage       `json:"waterUsage"`
	EnergyUsage      EnergyUsage      `json:"energyUsage"`
	ImpactScore      int              `json:"environmentalImpactScore"`
}

// CarbonFootprint describes production emissions relative to a conventional
// equivalent. ComparisonToStandard is a signed percentage: negative values
// mean the product emits less than the standard.
type CarbonFootprint struct {
	Value                decimal.Decimal `json:"value"`
	Unit                 string          `json:"unit"`
	ComparisonToStandard decimal.Decimal `json:"comparisonToStandard"`
}

// Recyclability describes what share of the product can be recycled.
type Recyclability struct {
	Percentage   decimal.Decimal `json:"percentage"`
	Instructions string          `json:"instructions,omitempty"`
}

// Biodegradability describes what share of the product breaks down and how fast.
type Biodegradability struct {
	Percentage decimal.Decimal `json:"percentage"`
	Timeframe  string          `json:"timeframe,omitempty"`
	Conditions string          `json:"conditions,omitempty"`
}

// WaterUsage describes production water consumption.
type WaterUsage struct {
	Value     decimal.Decimal `json:"value"`
	Unit      string          `json:"unit"`
	Reduction decimal.Decimal `json:"reduction,omitempty"`
}

// EnergyUsage describes production energy consumption.
type EnergyUsage struct {
	Value     decimal.Decimal `json:"value"`
	Unit      string          `json:"unit"`
	Renewable decimal.Decimal `json:"renewable"`
}

// CustomizationOption is a configurable aspect of a product (printing, size,
// color). Selecting a value may carry a per-unit price modifier.
type CustomizationOption struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Name          string               `json:"name"`
	Values        []CustomizationValue `json:"values"`
	Required      bool                 `json:"required"`
	PriceModifier *money.Money         `json:"priceModifier,omitempty"`
}

// CustomizationValue is one selectable value of a customization option.
type CustomizationValue struct {
	ID            string       `json:"id"`
	Value         string       `json:"value"`
	Label         string       `json:"label"`
	PriceModifier *money.Money `json:"priceModifier,omitempty"`
	Available     bool         `json:"available"`
}

// Certification is a third-party environmental or quality certification.
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Type   string `json:"type"`
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
