package inventory

import (
	"github.com/jassiaa29/pos-ventas-simple/internal/events"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
)

func stockLowEvent(p products.Product) events.StockLow {
	evt := events.StockLow{
		AccountID: p.AccountID,
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
	}
	if p.SKU != nil {
		evt.SKU = *p.SKU
	}
	return evt
}
