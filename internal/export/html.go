package export

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// invoiceTemplate is the fixed invoice layout: customer info, date, one row
// per item, grand total.
const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <style>
    body { font-family: Helvetica, Arial, sans-serif; color: #1E293B; padding: 32px; }
    h1 { font-size: 28px; margin-bottom: 4px; }
    .meta { color: #64748B; font-size: 13px; margin-bottom: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 16px; }
    th { text-align: left; font-size: 12px; color: #64748B; text-transform: uppercase;
         border-bottom: 2px solid #E2E8F0; padding: 8px 4px; }
    td { padding: 10px 4px; border-bottom: 1px solid #E2E8F0; font-size: 14px; }
    td.num, th.num { text-align: right; }
    .total-row td { border-bottom: none; font-size: 18px; font-weight: bold; padding-top: 16px; }
  </style>
</head>
<body>
  <h1>INVOICE</h1>
  <div class="meta">{{.Date}}</div>
  <div>
    <strong>{{.Bill.CustomerName}}</strong><br />
    {{.Bill.CustomerPhone}}
  </div>
  <table>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.ItemName}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{money .Price}}</td>
      <td class="num">{{money .ItemTotal}}</td>
    </tr>
    {{end}}
    <tr class="total-row">
      <td colspan="3">Grand Total</td>
      <td class="num">{{money .Bill.TotalAmount}}</td>
    </tr>
  </table>
</body>
</html>
`

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
}).Parse(invoiceTemplate))

// HTMLRenderer renders the invoice layout into an HTML file, ready to be
// handed to an OS print-to-PDF or share facility.
type HTMLRenderer struct {
	// Dir is where rendered files land. Defaults to the OS temp directory.
	Dir string
}

// Render writes the invoice document to disk and returns its path.
func (r *HTMLRenderer) Render(ctx context.Context, doc Document) (string, string, error) {
	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, fmt.Sprintf("invoice-%s.html", doc.Bill.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create invoice file: %w", err)
	}

	if err := r.WriteHTML(f, doc); err != nil {
		f.Close()
		os.Remove(path)
		return "", "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to finish invoice file: %w", err)
	}
	return path, "text/html", nil
}

// WriteHTML renders the invoice document to w. The HTTP surface uses this
// directly so exports stream without touching disk.
func (r *HTMLRenderer) WriteHTML(w io.Writer, doc Document) error {
	data := struct {
		Document
		Date string
	}{
		Document: doc,
		Date:     time.Unix(doc.Bill.CreatedAt, 0).Format("Monday, January 2, 2006"),
	}
	if err := invoiceTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}
	return nil
}
