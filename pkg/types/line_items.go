package types

import "github.com/shopspring/decimal"

// LineItem is one product row inside an order's denormalized items blob.
// The CRM sync writes these as-is; the back office only reads them.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineItems is stored as a JSONB column via GORM's json serializer.
type LineItems []LineItem

// Total sums quantity * unit price across all rows.
func (items LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
