package sales

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/money"
)

// ErrPDFUnavailable indicates no PDF renderer is configured.
var ErrPDFUnavailable = errors.New("receipt pdf rendering not configured")

// ReceiptProfile is the business information printed on receipts.
type ReceiptProfile struct {
	BusinessName string
	OwnerName    string
	Phone        string
	Currency     string
	Footer       string
	Location     *time.Location
}

// ProfileSource loads the receipt profile of an account.
type ProfileSource interface {
	ReceiptProfile(ctx context.Context, accountID uuid.UUID) (ReceiptProfile, error)
}

// PDFRenderer converts HTML into PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ReceiptRenderer renders sale receipts.
type ReceiptRenderer struct {
	tmpl     *template.Template
	profiles ProfileSource
	pdf      PDFRenderer
}

// NewReceiptRenderer parses the receipt template. pdf may be nil.
func NewReceiptRenderer(profiles ProfileSource, pdf PDFRenderer) *ReceiptRenderer {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal, currency string) string { return money.Format(d, currency) },
		"moneyPtr": func(d *decimal.Decimal, currency string) string {
			if d == nil {
				return ""
			}
			return money.Format(*d, currency)
		},
		"percent": func(d decimal.Decimal) string { return d.StringFixed(money.Places) + "%" },
		"positive": func(d decimal.Decimal) bool { return d.IsPositive() },
	}
	return &ReceiptRenderer{
		tmpl:     template.Must(template.New("receipt").Funcs(funcs).Parse(receiptTemplate)),
		profiles: profiles,
		pdf:      pdf,
	}
}

type receiptView struct {
	Sale     *Sale
	Profile  ReceiptProfile
	Date     string
	Currency string
}

// HTML renders the receipt of sale.
func (r *ReceiptRenderer) HTML(ctx context.Context, sale *Sale) ([]byte, error) {
	profile := ReceiptProfile{}
	if r.profiles != nil {
		p, err := r.profiles.ReceiptProfile(ctx, sale.AccountID)
		if err != nil {
			return nil, fmt.Errorf("load receipt profile: %w", err)
		}
		profile = p
	}
	loc := profile.Location
	if loc == nil {
		loc = time.Local
	}
	view := receiptView{
		Sale:     sale,
		Profile:  profile,
		Date:     sale.SaleDate.In(loc).Format("02/01/2006 15:04"),
		Currency: profile.Currency,
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the receipt through the configured PDF renderer.
func (r *ReceiptRenderer) PDF(ctx context.Context, sale *Sale) ([]byte, error) {
	if r.pdf == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := r.HTML(ctx, sale)
	if err != nil {
		return nil, err
	}
	pdf, err := r.pdf.RenderHTML(ctx, string(html))
	if err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return pdf, nil
}

// ReceiptHTML renders the receipt of a stored sale.
func (s *Service) ReceiptHTML(ctx context.Context, accountID, id uuid.UUID) ([]byte, error) {
	sale, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	return s.receipts.HTML(ctx, sale)
}

// ReceiptPDF renders the receipt of a stored sale as PDF.
func (s *Service) ReceiptPDF(ctx context.Context, accountID, id uuid.UUID) ([]byte, error) {
	sale, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	return s.receipts.PDF(ctx, sale)
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Sale.SaleNumber}}</title>
<style>
body { font-family: monospace; width: 72mm; margin: 0 auto; font-size: 12px; }
h1 { font-size: 16px; text-align: center; margin: 4px 0; }
.center { text-align: center; }
table { width: 100%; border-collapse: collapse; }
td.num { text-align: right; }
.total { font-weight: bold; border-top: 1px dashed #000; }
</style>
</head>
<body>
<h1>{{if .Profile.BusinessName}}{{.Profile.BusinessName}}{{else}}Recibo{{end}}</h1>
{{with .Profile.Phone}}<p class="center">{{.}}</p>{{end}}
<p>Venta: {{.Sale.SaleNumber}}<br>Fecha: {{.Date}}{{with .Sale.CustomerName}}<br>Cliente: {{.}}{{end}}</p>
<table>
{{range .Sale.Items}}
<tr><td colspan="2">{{.ProductName}}</td></tr>
<tr><td>{{.Quantity}} x {{money .UnitPrice $.Currency}}{{if positive .DiscountPercent}} (-{{percent .DiscountPercent}}){{end}}</td><td class="num">{{money (.Subtotal.Sub .DiscountAmount) $.Currency}}</td></tr>
{{end}}
<tr class="total"><td>Subtotal</td><td class="num">{{money .Sale.Subtotal .Currency}}</td></tr>
{{if positive .Sale.ItemDiscountAmount}}<tr><td>Descuentos</td><td class="num">-{{money .Sale.ItemDiscountAmount .Currency}}</td></tr>{{end}}
{{if positive .Sale.GlobalDiscountAmount}}<tr><td>Descuento general ({{percent .Sale.GlobalDiscountPercent}})</td><td class="num">-{{money .Sale.GlobalDiscountAmount .Currency}}</td></tr>{{end}}
<tr class="total"><td>Total</td><td class="num">{{money .Sale.TotalAmount .Currency}}</td></tr>
<tr><td>Pago</td><td class="num">{{if eq .Sale.PaymentMethod "cash"}}Efectivo{{else}}Tarjeta{{end}}</td></tr>
{{if .Sale.CashReceived}}<tr><td>Recibido</td><td class="num">{{moneyPtr .Sale.CashReceived .Currency}}</td></tr>
<tr><td>Cambio</td><td class="num">{{moneyPtr .Sale.ChangeDue .Currency}}</td></tr>{{end}}
</table>
{{with .Profile.Footer}}<p class="center">{{.}}</p>{{end}}
</body>
</html>
`
