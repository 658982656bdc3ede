package export

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
)

// PDFFilename derives a filesystem-safe attachment name from the invoice number.
func PDFFilename(invoiceNumber string) string {
	name := slug.Make(invoiceNumber)
	if name == "" {
		name = "document"
	}
	return "invoice-" + name + ".pdf"
}

func RenderInvoicePDF(detail invoicedomain.InvoiceDetail) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice "+detail.InvoiceNumber, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, strings.ToUpper(string(detail.Status)), props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	dueDate := "-"
	if detail.DueDate != nil {
		dueDate = detail.DueDate.UTC().Format(time.DateOnly)
	}
	m.AddRow(16,
		col.New(6).Add(
			text.New("Date of issue: "+detail.IssueDate.UTC().Format(time.DateOnly), props.Text{Top: 0}),
			text.New("Date due: "+dueDate, props.Text{Top: 5}),
			text.New("Category: "+categoryLabel(detail.Category), props.Text{Top: 10}),
		),
		col.New(6),
	)

	m.AddRow(30,
		col.New(6).Add(partyText("From", vendorLines(detail.Vendor))...),
		col.New(6).Add(partyText("Bill to", customerLines(detail.Customer))...),
	)

	m.AddRow(8,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range detail.LineItems {
		m.AddRow(8,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.UnitPrice, detail.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.Amount, detail.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	if detail.TaxAmount.Valid {
		totalRow(m, "Tax", money(detail.TaxAmount.Decimal, detail.Currency), false)
	}
	if detail.DiscountAmount.Valid {
		totalRow(m, "Discount", money(detail.DiscountAmount.Decimal, detail.Currency), false)
	}
	totalRow(m, "Total", money(detail.TotalAmount, detail.Currency), false)
	totalRow(m, "Paid", money(detail.PaidAmount, detail.Currency), false)
	totalRow(m, "Balance due", money(detail.Balance, detail.Currency), true)

	if len(detail.Payments) > 0 {
		m.AddRow(10, text.NewCol(12, "Payments", props.Text{Style: fontstyle.Bold, Size: 10, Top: 4}))
		for _, p := range detail.Payments {
			m.AddRow(6,
				text.NewCol(4, p.PaymentDate.UTC().Format(time.DateOnly), props.Text{Size: 9}),
				text.NewCol(4, p.PaymentMethod, props.Text{Size: 9}),
				text.NewCol(4, money(p.Amount, detail.Currency), props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	if detail.Notes != nil && strings.TrimSpace(*detail.Notes) != "" {
		m.AddRow(16, text.NewCol(12, *detail.Notes, props.Text{Size: 8, Top: 6}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func totalRow(m core.Maroto, label, value string, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func partyText(title string, lines []string) []core.Component {
	components := []core.Component{text.New(title, props.Text{Style: fontstyle.Bold})}
	for i, l := range lines {
		components = append(components, text.New(l, props.Text{Top: float64(5 * (i + 1))}))
	}
	return components
}

func vendorLines(v *invoicedomain.Vendor) []string {
	if v == nil {
		return []string{"Unknown"}
	}
	return compact(v.Name, deref(v.Address), deref(v.Email), deref(v.TaxID))
}

func customerLines(c *invoicedomain.Customer) []string {
	if c == nil {
		return []string{"Unknown"}
	}
	return compact(c.Name, deref(c.Address), deref(c.Email))
}

func compact(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func money(amount decimal.Decimal, currency string) string {
	return currency + " " + amount.StringFixed(2)
}
