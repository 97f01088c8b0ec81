package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Fixed column orders per mode. The export contract is stable; do not
// reorder without versioning the dashboard clients.
var operationsColumns = []string{
	"pass_id", "name", "email", "phone", "college", "pass_type",
	"event_name", "status", "used_at", "team_name", "member_count", "created_at",
}

var financialColumns = append(append([]string{}, operationsColumns...),
	"payment_id", "amount", "payment_method")

// WriteCSV streams a page of records in the mode's fixed column order.
func WriteCSV(w io.Writer, records []Record, financial bool) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	columns := operationsColumns
	if financial {
		columns = financialColumns
	}
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.PassID,
			r.Name,
			r.Email,
			r.Phone,
			r.College,
			r.PassType,
			r.EventName,
			r.Status,
			formatTimePtr(r.UsedAt),
			r.TeamName,
			fmt.Sprintf("%d", r.MemberCount),
			r.CreatedAt.Format(time.RFC3339),
		}
		if financial {
			row = append(row, r.PaymentID, fmt.Sprintf("%.2f", r.Amount), r.PaymentMethod)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
