// internal/domain/payment/row.go
package payment

// Row is one line of the payments sheet. Descriptive fields are optional and
// kept as the raw cell text.
type Row struct {
	SheetRow        int // 1-based, header is row 1
	DueDate         string
	ConfederateName string
	ConfederateID   string
	Order           string
	Channel         string
	Amount          string
	DeliveryMethod  string
	TransactionDate string
}

// Columns names the sheet headers the reminder batch reads and writes.
type Columns struct {
	DueDate         string
	ConfederateName string
	ConfederateID   string
	Order           string
	Channel         string
	Amount          string
	DeliveryMethod  string
	TransactionDate string
	EventID         string // output column, appended when missing
}

// DefaultColumns returns the header names used by the study's payments sheet.
func DefaultColumns() Columns {
	return Columns{
		DueDate:         "Send-by Date",
		ConfederateName: "Confederate Name",
		ConfederateID:   "Confederate ID",
		Order:           "Transaction Order",
		Channel:         "Channel",
		Amount:          "Amount",
		DeliveryMethod:  "Delivery Method",
		TransactionDate: "Transaction Date",
		EventID:         "Reminder Event ID",
	}
}
