package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
)

var (
	invoiceHeader = []string{
		"Invoice Number", "Vendor", "Customer", "Issue Date", "Due Date",
		"Total Amount", "Paid Amount", "Balance", "Status", "Category",
	}
	vendorHeader = []string{"Vendor Name", "Email", "Phone", "Total Invoices", "Total Spend"}
)

func InvoicesCSV(rows []invoicedomain.InvoiceRow) ([]byte, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, invoiceHeader)
	for _, row := range rows {
		dueDate := ""
		if row.DueDate != nil {
			dueDate = row.DueDate.UTC().Format(time.DateOnly)
		}
		records = append(records, []string{
			row.InvoiceNumber,
			row.Vendor,
			row.Customer,
			row.IssueDate.UTC().Format(time.DateOnly),
			dueDate,
			row.TotalAmount.StringFixed(2),
			row.PaidAmount.StringFixed(2),
			row.TotalAmount.Sub(row.PaidAmount).StringFixed(2),
			string(row.Status),
			categoryLabel(row.Category),
		})
	}
	return write(records)
}

func VendorsCSV(rows []analyticsdomain.VendorSummary) ([]byte, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, vendorHeader)
	for _, row := range rows {
		records = append(records, []string{
			row.Name,
			deref(row.Email),
			deref(row.Phone),
			strconv.FormatInt(row.InvoiceCount, 10),
			row.TotalSpend.StringFixed(2),
		})
	}
	return write(records)
}

func write(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func categoryLabel(category *string) string {
	if category == nil || strings.TrimSpace(*category) == "" {
		return analyticsdomain.UncategorizedLabel
	}
	return *category
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
