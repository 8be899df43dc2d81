package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNameRequired     = errors.New("product name is required")
	ErrInvalidBasePrice = errors.New("base price must be positive")
	ErrInvalidDiscount  = errors.New("discounts must satisfy 0 <= min <= max < 1")
	ErrInvalidRounds    = errors.New("max rounds must be positive")
)

// Product describes the single item on sale. It is built once at startup and
// never mutated afterwards.
type Product struct {
	Name        string          `json:"name"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Features    []string        `json:"features,omitempty"`
	MinDiscount decimal.Decimal `json:"minDiscount"`
	MaxDiscount decimal.Decimal `json:"maxDiscount"`
	MaxRounds   int             `json:"maxRounds"`
}

// Default returns the laptop the shop has been selling since launch.
func Default() Product {
	return Product{
		Name:      "Quantum Leap Laptop X1",
		BasePrice: decimal.RequireFromString("2000.00"),
		Features: []string{
			"16-inch Mini-LED Display",
			"64GB RAM",
			"2TB SSD Gen4",
			"Next-Gen CPU",
			"Advanced Cooling",
		},
		MinDiscount: decimal.RequireFromString("0.05"),
		MaxDiscount: decimal.RequireFromString("0.18"),
		MaxRounds:   8,
	}
}

// Validate checks the invariants every negotiation relies on.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !p.BasePrice.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidBasePrice, p.BasePrice.String())
	}
	if p.MinDiscount.IsNegative() || p.MinDiscount.GreaterThan(p.MaxDiscount) || p.MaxDiscount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: min=%s max=%s", ErrInvalidDiscount, p.MinDiscount.String(), p.MaxDiscount.String())
	}
	if p.MaxRounds <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRounds, p.MaxRounds)
	}
	return nil
}

// FloorPrice is the lowest price the seller will ever agree to.
func (p Product) FloorPrice() decimal.Decimal {
	return p.BasePrice.Mul(decimal.NewFromInt(1).Sub(p.MaxDiscount))
}

// MaxDiscountPercent renders the max discount as a percentage, e.g. "18".
func (p Product) MaxDiscountPercent() string {
	return p.MaxDiscount.Mul(decimal.NewFromInt(100)).String()
}

// Clone returns a copy that does not share the feature slice.
func (p Product) Clone() Product {
	p.Features = append([]string(nil), p.Features...)
	return p
}
