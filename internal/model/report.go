package model

// ProductReport holds the financial metrics of one product, or of every
// product summed together.
type ProductReport struct {
	TotalQuantity    int64 `json:"totalQuantity"`
	TotalProfit      int64 `json:"totalProfit"`
	Revenue          int64 `json:"revenue"`
	Sales            int64 `json:"sales"`
	NetPurchaseValue int64 `json:"netPurchaseValue"`
	NetSalesValue    int64 `json:"netSalesValue"`
	MoMProfit        int64 `json:"moMProfit"`
	YoYProfit        int64 `json:"yoYProfit"`
}

// StockTotals are the raw sums a report is derived from.
type StockTotals struct {
	Quantity   int64
	SoldAmount int64
	// Value sums are per-row products so that aggregate reports stay exact
	// when buying prices differ between products.
	QuantityValue int64 // sum(quantity * buying_price)
	SoldValue     int64 // sum(sold_amount * buying_price)
}

// NewProductReport derives the report metrics from raw totals.
func NewProductReport(t StockTotals, moM, yoY int64) ProductReport {
	totalQuantity := t.Quantity + t.SoldAmount
	revenue := t.SoldValue
	netPurchaseValue := t.QuantityValue + t.SoldValue
	netSalesValue := revenue

	return ProductReport{
		TotalQuantity:    totalQuantity,
		TotalProfit:      netSalesValue - netPurchaseValue,
		Revenue:          revenue,
		Sales:            t.SoldAmount,
		NetPurchaseValue: netPurchaseValue,
		NetSalesValue:    netSalesValue,
		MoMProfit:        moM,
		YoYProfit:        yoY,
	}
}

// BestSeller is a product ranked by units sold through the ledger.
type BestSeller struct {
	Product
	TotalSold int64 `json:"total_sold"`
}
