package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
)

var hundred = decimal.NewFromInt(100)

// Pricing is a consistent price/MRP/discount triple.
type Pricing struct {
	Price    decimal.Decimal
	MRP      decimal.Decimal
	Discount int
}

// DerivePricing fills whichever of price, mrp and discount was omitted.
// At least one of price or mrp is required.
func DerivePricing(price, mrp *decimal.Decimal, discount *int) (Pricing, error) {
	if discount != nil && (*discount < 0 || *discount > 100) {
		return Pricing{}, apperrors.Validation("discount must be between 0 and 100")
	}
	if price != nil && price.IsNegative() {
		return Pricing{}, apperrors.Validation("price must not be negative")
	}
	if mrp != nil && !mrp.IsPositive() {
		return Pricing{}, apperrors.Validation("mrp must be positive")
	}

	var p Pricing
	switch {
	case price != nil && mrp != nil:
		if price.GreaterThan(*mrp) {
			return Pricing{}, apperrors.Validation("price must not exceed mrp")
		}
		p.Price, p.MRP = *price, *mrp
		p.Discount = discountPercent(p.Price, p.MRP)
		if discount != nil && *discount != p.Discount {
			return Pricing{}, apperrors.Validation("discount %d does not match price and mrp (%d)", *discount, p.Discount).
				WithDetail("field", "discount")
		}
	case mrp != nil:
		d := 0
		if discount != nil {
			d = *discount
		}
		p.MRP, p.Discount = *mrp, d
		p.Price = mrp.Mul(hundred.Sub(decimal.NewFromInt(int64(d)))).Div(hundred).Round(2)
	case price != nil:
		p.Price = *price
		if discount != nil && *discount > 0 && *discount < 100 {
			p.Discount = *discount
			p.MRP = price.Mul(hundred).Div(hundred.Sub(decimal.NewFromInt(int64(*discount)))).Round(2)
		} else {
			p.MRP = *price
		}
	default:
		return Pricing{}, apperrors.Validation("price or mrp is required")
	}

	p.Price = p.Price.Round(2)
	p.MRP = p.MRP.Round(2)
	return p, nil
}

func discountPercent(price, mrp decimal.Decimal) int {
	if !mrp.IsPositive() {
		return 0
	}
	return int(mrp.Sub(price).Div(mrp).Mul(hundred).Round(0).IntPart())
}
