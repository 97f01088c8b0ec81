package dashboard_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"festpass/internal/dashboard"
	"festpass/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVOperations(t *testing.T) {
	used := time.Date(2026, 1, 16, 14, 30, 0, 0, time.UTC)
	records := []dashboard.Record{
		{
			PassID:    "p1",
			Name:      "Asha",
			Email:     "asha@example.com",
			PassType:  models.PassTypeDay,
			EventName: "Day 2",
			Status:    models.PassStatusUsed,
			UsedAt:    &used,
			CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			PassID:    "p2",
			Name:      "Ravi",
			PassType:  models.PassTypeTeam,
			EventName: "RoboWars",
			Status:    models.PassStatusPaid,
			TeamName:  "Byte Bandits",
			CreatedAt: time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC),
			// Financial fields set but operations export must omit them.
			PaymentID: "pay_2",
			Amount:    1200,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, dashboard.WriteCSV(&buf, records, false))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "pass_id", rows[0][0])
	assert.Len(t, rows[0], 12)
	assert.Equal(t, "p1", rows[1][0])
	assert.Equal(t, "2026-01-16T14:30:00Z", rows[1][8])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "Byte Bandits", rows[2][9])
}

func TestWriteCSVFinancialColumns(t *testing.T) {
	records := []dashboard.Record{{
		PassID:        "p1",
		PaymentID:     "pay_1",
		Amount:        499.5,
		PaymentMethod: models.PaymentMethodUPI,
		CreatedAt:     time.Now(),
	}}

	var buf bytes.Buffer
	require.NoError(t, dashboard.WriteCSV(&buf, records, true))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 15)
	assert.Equal(t, "payment_method", rows[0][14])
	assert.Equal(t, "pay_1", rows[1][12])
	assert.Equal(t, "499.50", rows[1][13])
	assert.Equal(t, models.PaymentMethodUPI, rows[1][14])
}
