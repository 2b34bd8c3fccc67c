package receipts

import (
	"github.com/shopspring/decimal"

	"stockreceipter/models"
)

// Totals are the header figures derived from a receipt's items.
type Totals struct {
	Quantity     int64           `json:"quantity"`
	TotalProduct int64           `json:"totalProduct"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// Summarize returns Σquantity, the line count and Σ(costPrice × quantity).
func Summarize(items []models.ReceiptItem) Totals {
	t := Totals{TotalAmount: decimal.Zero}
	for _, it := range items {
		t.Quantity += it.Quantity
		t.TotalProduct++
		t.TotalAmount = t.TotalAmount.Add(it.CostPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return t
}

// Apply copies totals onto an import header.
func (t Totals) Apply(r *models.ReceiptImport) {
	r.Quantity = t.Quantity
	r.TotalProduct = t.TotalProduct
	r.TotalAmount = t.TotalAmount
}

// Discrepancy is the counted-vs-system difference of one item.
type Discrepancy struct {
	Difference      int64           `json:"difference"`
	ValueDifference decimal.Decimal `json:"valueDifference"`
}

func ItemDiscrepancy(it models.ReceiptItem) Discrepancy {
	diff := it.ActualInventory - it.Inventory
	return Discrepancy{
		Difference:      diff,
		ValueDifference: decimal.NewFromInt(diff).Mul(it.CostPrice),
	}
}

// CheckSummary is the per-receipt roll-up shown in check listings.
type CheckSummary struct {
	SystemInventory      int64           `json:"systemInventory"`
	ActualInventory      int64           `json:"actualInventory"`
	TotalDifference      int64           `json:"totalDifference"`
	TotalValueDifference decimal.Decimal `json:"totalValueDifference"`
}

func SumDiscrepancies(items []models.ReceiptItem) CheckSummary {
	s := CheckSummary{TotalValueDifference: decimal.Zero}
	for _, it := range items {
		d := ItemDiscrepancy(it)
		s.SystemInventory += it.Inventory
		s.ActualInventory += it.ActualInventory
		s.TotalDifference += d.Difference
		s.TotalValueDifference = s.TotalValueDifference.Add(d.ValueDifference)
	}
	return s
}
