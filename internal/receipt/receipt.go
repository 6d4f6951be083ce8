// Package receipt renders payment receipts as PDF through headless Chrome.
package receipt

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"claims-payment-backend/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
)

const DefaultPayingBank = "WEMA BANK PLC"

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 40px; }
  h1 { text-align: center; font-size: 22px; border-bottom: 1px solid #000; padding-bottom: 8px; }
  .row { margin: 10px 0; font-size: 14px; }
  .amount { font-weight: bold; }
  .footer { border-top: 1px solid #000; margin-top: 30px; padding-top: 8px; text-align: center; font-style: italic; font-size: 11px; }
</style>
</head>
<body>
  <h1>PAYMENT RECEIPT</h1>
  <div class="row">HCP Code: {{.HCPCode}}</div>
  <div class="row">Hospital Name: {{.HospName}}</div>
  <div class="row">Narration: {{.Narration}}</div>
  <div class="row amount">Bill Amount: {{.BillAmount}}</div>
  <div class="row amount">Approved Amount: {{.ApprovedAmount}}</div>
  <div class="row">Paying Bank: {{.PayingBank}}</div>
  <div class="row">Account No: {{.AcctNo}}</div>
  <div class="row">Date of Payment: {{.DateOfPayment}}</div>
  <div class="footer">This is a system-generated receipt. No signature required.</div>
</body>
</html>`))

type view struct {
	HCPCode        string
	HospName       string
	Narration      string
	BillAmount     string
	ApprovedAmount string
	PayingBank     string
	AcctNo         string
	DateOfPayment  string
}

type Renderer struct {
	payingBank string
	timeout    time.Duration
}

func NewRenderer(payingBank string, timeout time.Duration) *Renderer {
	if payingBank == "" {
		payingBank = DefaultPayingBank
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Renderer{payingBank: payingBank, timeout: timeout}
}

// Filename is the download name of a payment's receipt.
func Filename(p *models.PaymentRecord) string {
	return fmt.Sprintf("receipt_%s.pdf", p.ID)
}

func (r *Renderer) HTML(p *models.PaymentRecord) ([]byte, error) {
	var buf bytes.Buffer
	err := receiptTemplate.Execute(&buf, view{
		HCPCode:        p.HCPCode,
		HospName:       p.HospName,
		Narration:      p.Narration,
		BillAmount:     FormatNaira(p.BillAmount),
		ApprovedAmount: FormatNaira(p.ApprovedAmount),
		PayingBank:     r.payingBank,
		AcctNo:         p.AcctNo,
		DateOfPayment:  FormatDate(p.DateOfPayment),
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt template: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF prints the receipt page to an A4 document.
func (r *Renderer) PDF(ctx context.Context, p *models.PaymentRecord) ([]byte, error) {
	html, err := r.HTML(p)
	if err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var buf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.7).
				WithMarginTop(0.4).
				WithMarginBottom(0.6).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print receipt to PDF: %w", err)
	}
	return buf, nil
}

// FormatNaira renders an amount with a naira sign and thousands separators.
func FormatNaira(d decimal.Decimal) string {
	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := sign + "₦" + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05Z07:00", "02-01-2006", "01/02/2006", "2006/01/02"}

// FormatDate shows the stored payment date as dd/mm/yyyy, or as stored when
// it cannot be read.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}
