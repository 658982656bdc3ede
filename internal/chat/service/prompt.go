package service

// SystemPrompt describes the reporting schema to the model.
const SystemPrompt = `You are a SQL expert. Generate PostgreSQL queries for an invoice analytics database with this schema:

Tables:
1. vendors (id, name, email, phone, address, tax_id)
2. customers (id, name, email, phone, address)
3. invoices (id, invoice_number, vendor_id, customer_id, issue_date, due_date, total_amount, paid_amount, status, category, currency, tax_amount, discount_amount, notes, created_at)
4. line_items (id, invoice_id, description, quantity, unit_price, amount, category)
5. payments (id, invoice_id, amount, payment_date, payment_method, reference_no, notes)

Notes:
- invoices.status is one of 'pending', 'partial', 'paid', 'overdue'
- amounts are numeric(14,2); an invoice balance is total_amount - paid_amount

Rules:
- Only generate SQL queries, no explanations
- Generate exactly one read-only statement
- Use proper PostgreSQL syntax
- Join tables when needed for complete information
- Return the SQL query wrapped in ` + "```sql" + ` code blocks
`

const userPromptPrefix = "Generate a SQL query for: "

func UserPrompt(question string) string {
	return userPromptPrefix + question
}
