package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	"github.com/jassiaa29/pos-ventas-simple/internal/money"
)

const statusCompleted = "completed"

// Input is everything Build folds over.
type Input struct {
	// Sales of the window; sales outside it are ignored.
	Sales []Sale
	// Recent sales, any order.
	Recent   []Sale
	Products []products.Product
	Now      time.Time
	Location *time.Location
	TopN     int
}

// WindowStart returns local midnight of the first day of the window ending today.
func WindowStart(now time.Time, loc *time.Location) time.Time {
	return startOfDay(now, loc).AddDate(0, 0, -(WindowDays - 1))
}

// WindowEnd returns local midnight of tomorrow.
func WindowEnd(now time.Time, loc *time.Location) time.Time {
	return startOfDay(now, loc).AddDate(0, 0, 1)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// Build computes the dashboard. It is a pure function of in.
func Build(in Input) Dashboard {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	topN := in.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	start := WindowStart(in.Now, loc)
	today := dayKey(in.Now, loc)

	series := make([]DayPoint, WindowDays)
	index := make(map[string]int, WindowDays)
	for i := range series {
		key := start.AddDate(0, 0, i).Format(time.DateOnly)
		series[i] = DayPoint{Date: key, Revenue: decimal.Zero}
		index[key] = i
	}

	dash := Dashboard{
		Today:         Period{Revenue: decimal.Zero},
		LastSevenDays: Period{Revenue: decimal.Zero},
		AverageTicket: decimal.Zero,
		GeneratedAt:   in.Now,
	}
	tops := newTopAccumulator()
	for _, s := range in.Sales {
		if s.Status != statusCompleted {
			continue
		}
		key := dayKey(s.SaleDate, loc)
		i, ok := index[key]
		if !ok {
			continue
		}
		series[i].Revenue = series[i].Revenue.Add(s.Total)
		series[i].Orders++
		dash.LastSevenDays.Revenue = dash.LastSevenDays.Revenue.Add(s.Total)
		dash.LastSevenDays.Orders++
		if key == today {
			dash.Today.Revenue = dash.Today.Revenue.Add(s.Total)
			dash.Today.Orders++
		}
		tops.add(s)
	}
	dash.Series = series
	if dash.LastSevenDays.Orders > 0 {
		dash.AverageTicket = money.Round(dash.LastSevenDays.Revenue.Div(decimal.NewFromInt(int64(dash.LastSevenDays.Orders))))
	}
	dash.TopByQuantity = tops.byQuantity(topN)
	dash.TopByRevenue = tops.byRevenue(topN)
	dash.LowStock = lowStock(in.Products)
	dash.RecentSales = recent(in.Recent, RecentLimit)
	dash.ProductCount = len(in.Products)
	return dash
}

type topEntry struct {
	TopProduct
	lastSeen time.Time
}

type topAccumulator struct {
	entries map[string]*topEntry
}

func newTopAccumulator() *topAccumulator {
	return &topAccumulator{entries: make(map[string]*topEntry)}
}

// add groups lines by product id. Lines of deleted products fall back to
// their name. The display name is the one of the latest sale.
func (a *topAccumulator) add(s Sale) {
	for _, it := range s.Items {
		key := "name:" + it.Name
		if it.ProductID != nil {
			key = it.ProductID.String()
		}
		e, ok := a.entries[key]
		if !ok {
			e = &topEntry{TopProduct: TopProduct{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero}}
			a.entries[key] = e
		}
		e.Quantity += it.Quantity
		e.Revenue = e.Revenue.Add(it.Subtotal)
		if !s.SaleDate.Before(e.lastSeen) {
			e.Name = it.Name
			e.lastSeen = s.SaleDate
		}
	}
}

func (a *topAccumulator) sorted(less func(x, y TopProduct) int) []TopProduct {
	out := make([]TopProduct, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.TopProduct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := less(out[i], out[j]); c != 0 {
			return c < 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return idString(out[i]) < idString(out[j])
	})
	return out
}

func idString(p TopProduct) string {
	if p.ProductID == nil {
		return ""
	}
	return p.ProductID.String()
}

func (a *topAccumulator) byQuantity(n int) []TopProduct {
	return head(a.sorted(func(x, y TopProduct) int {
		if x.Quantity != y.Quantity {
			return y.Quantity - x.Quantity
		}
		return y.Revenue.Cmp(x.Revenue)
	}), n)
}

func (a *topAccumulator) byRevenue(n int) []TopProduct {
	return head(a.sorted(func(x, y TopProduct) int {
		if c := y.Revenue.Cmp(x.Revenue); c != 0 {
			return c
		}
		return y.Quantity - x.Quantity
	}), n)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func lowStock(items []products.Product) []LowStockItem {
	out := []LowStockItem{}
	for _, p := range items {
		if !p.IsLowStock() {
			continue
		}
		out = append(out, LowStockItem{ProductID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Stock, MinStock: p.MinStock})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func recent(sales []Sale, n int) []RecentSale {
	completed := make([]Sale, 0, len(sales))
	for _, s := range sales {
		if s.Status == statusCompleted {
			completed = append(completed, s)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].SaleDate.After(completed[j].SaleDate)
	})
	completed = head(completed, n)
	out := make([]RecentSale, len(completed))
	for i, s := range completed {
		count := 0
		for _, it := range s.Items {
			count += it.Quantity
		}
		out[i] = RecentSale{
			ID:            s.ID,
			SaleNumber:    s.SaleNumber,
			CustomerName:  s.CustomerName,
			Total:         s.Total,
			PaymentMethod: s.PaymentMethod,
			ItemCount:     count,
			SaleDate:      s.SaleDate,
		}
	}
	return out
}
