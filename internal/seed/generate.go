package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
)

var sampleVendors = []VendorDoc{
	{Name: "Acme Corp", Email: "billing@acme.com", Phone: "555-0100", Address: "123 Main St", TaxID: "12-3456789"},
	{Name: "TechSupply Inc", Email: "invoices@techsupply.com", Phone: "555-0200"},
	{Name: "Office Solutions", Email: "accounts@officesolutions.com", Phone: "555-0300"},
	{Name: "Cloud Services Ltd", Email: "billing@cloudservices.com", Phone: "555-0400"},
	{Name: "Marketing Pro", Email: "finance@marketingpro.com", Phone: "555-0500"},
}

var sampleCustomers = []CustomerDoc{
	{Name: "ABC Company", Email: "ap@abc.com", Phone: "555-1000", Address: "456 Business Ave"},
	{Name: "XYZ Enterprises", Email: "payments@xyz.com", Phone: "555-2000"},
}

var sampleCategories = []string{"Software", "Hardware", "Services", "Consulting", "Marketing", "Office Supplies"}

var paymentMethods = []string{"credit_card", "bank_transfer", "check"}

var taxRate = decimal.RequireFromString("0.1")

// Generate builds n sample invoices issued within the year before now. The
// same seed always yields the same documents.
func Generate(n int, seed uint64, now time.Time) []Document {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	today := now.UTC().Truncate(24 * time.Hour)
	half := decimal.NewFromFloat(0.5)

	docs := make([]Document, 0, n)
	for i := 1; i <= n; i++ {
		vendor := sampleVendors[rng.IntN(len(sampleVendors))]
		customer := sampleCustomers[rng.IntN(len(sampleCustomers))]
		category := sampleCategories[rng.IntN(len(sampleCategories))]
		status := invoicedomain.Statuses[rng.IntN(len(invoicedomain.Statuses))]

		count := rng.IntN(3) + 1
		items := make([]LineItemDoc, 0, count)
		subtotal := decimal.Zero
		for j := 1; j <= count; j++ {
			quantity := decimal.NewFromInt(int64(rng.IntN(10) + 1))
			unitPrice := decimal.NewFromInt(int64(rng.IntN(500) + 50))
			amount := quantity.Mul(unitPrice)
			subtotal = subtotal.Add(amount)
			items = append(items, LineItemDoc{
				Description: fmt.Sprintf("%s Item %d", category, j),
				Quantity:    quantity,
				UnitPrice:   unitPrice,
				Amount:      amount,
				Category:    category,
			})
		}
		tax := subtotal.Mul(taxRate).Round(2)
		total := subtotal.Add(tax)

		issueDate := today.AddDate(0, 0, -rng.IntN(365))
		dueDate := issueDate.AddDate(0, 0, 30)

		paid := decimal.Zero
		var payments []PaymentDoc
		switch status {
		case invoicedomain.StatusPaid:
			paid = total
			payments = append(payments, PaymentDoc{
				Amount:        total,
				PaymentDate:   dueDate.AddDate(0, 0, -rng.IntN(10)).Format(time.RFC3339),
				PaymentMethod: paymentMethods[rng.IntN(len(paymentMethods))],
				ReferenceNo:   fmt.Sprintf("PAY-%d-%d", i, seed),
			})
		case invoicedomain.StatusPartial:
			paid = total.Mul(half).Round(2)
			payments = append(payments, PaymentDoc{
				Amount:        paid,
				PaymentDate:   dueDate.AddDate(0, 0, -rng.IntN(15)).Format(time.RFC3339),
				PaymentMethod: "bank_transfer",
			})
		}

		docs = append(docs, Document{
			InvoiceNumber: fmt.Sprintf("INV-%d-%04d", issueDate.Year(), i),
			Vendor:        vendor,
			Customer:      customer,
			IssueDate:     issueDate.Format(time.RFC3339),
			DueDate:       dueDate.Format(time.RFC3339),
			TotalAmount:   total,
			PaidAmount:    decimal.NewNullDecimal(paid),
			Status:        string(status),
			Category:      category,
			Currency:      "USD",
			TaxAmount:     decimal.NewNullDecimal(tax),
			LineItems:     items,
			Payments:      payments,
		})
	}
	return docs
}
