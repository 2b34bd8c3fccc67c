package products

import "stockreceipter/infrastructure/pagination"

// ImportSummary counts the outcome of one catalogue CSV upload.
type ImportSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}

// ProductRecord is a catalogue row as listed to the client.
type ProductRecord struct {
	ID          string `bun:"id" json:"id"`
	Code        string `bun:"-" json:"code"`
	ProductCode int64  `bun:"product_code" json:"productCode"`
	ProductName string `bun:"product_name" json:"productName"`
	CostPrice   string `bun:"cost_price" json:"costPrice"`
	Inventory   int64  `bun:"inventory" json:"inventory"`
	Unit        string `bun:"unit" json:"unit"`
	UpdatedAt   string `bun:"updated_at" json:"updatedAt"`
}

type ListResult struct {
	Products []ProductRecord    `json:"data"`
	Metadata pagination.Metadata `json:"metadata"`
}
