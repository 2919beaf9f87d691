package backup

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

func sampleState() State {
	created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	deletedAt := created.Add(time.Hour)

	settings := domain.DefaultSettings()
	settings.MonthlyGoal = decimal.RequireFromString("1500.50")
	settings.Currency = "EUR"
	settings.CustomCategories = domain.CustomCategories{Income: []string{"Rental"}, Debt: []string{"Pets"}}
	settings.SharedUsers = []string{"ana@example.com"}

	return State{
		Entries: []domain.Entry{
			{
				ID: "01A", Type: domain.EntryTypeIncome, Value: decimal.RequireFromString("3000"),
				Date: "2025-05-05", Category: "Salary", Description: "May salary",
				Status: domain.StatusReceived, Recurrent: true, CreatedAt: created,
			},
			{
				ID: "01B", Type: domain.EntryTypeDebt, Value: decimal.RequireFromString("33.34"),
				Date: "2025-07-31", Category: "Leisure", Description: `TV "4K" (3/3)`,
				Status: domain.StatusPending, CreatedAt: created,
			},
			{
				ID: "01C", Type: domain.EntryTypeDebt, Value: decimal.RequireFromString("10"),
				Date: "2025-05-02", Category: "Food", Description: "gone",
				Status: domain.StatusPaid, CreatedAt: created, Deleted: true, DeletedAt: &deletedAt,
			},
		},
		Settings: settings,
	}
}

func TestExport_SkipsTombstones(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	doc := Export(sampleState(), now)

	require.Len(t, doc.Entries, 2)
	assert.Equal(t, FormatVersion, doc.Version)
	assert.Equal(t, now, doc.ExportDate)
	for _, e := range doc.Entries {
		assert.False(t, e.Deleted)
	}
}

func TestRoundTrip(t *testing.T) {
	state := sampleState()
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Export(state, now)))

	doc, err := Decode(&buf)
	require.NoError(t, err)

	visible := domain.Visible(state.Entries)
	require.Len(t, doc.Entries, len(visible))
	for i, want := range visible {
		got := doc.Entries[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Type, got.Type)
		assert.True(t, want.Value.Equal(got.Value), "value %s != %s", want.Value, got.Value)
		assert.Equal(t, want.Date, got.Date)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.Recurrent, got.Recurrent)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	}

	settings := doc.ApplySettings(domain.DefaultSettings())
	assert.True(t, settings.MonthlyGoal.Equal(state.Settings.MonthlyGoal))
	assert.Equal(t, state.Settings.Currency, settings.Currency)
	assert.Equal(t, state.Settings.CustomCategories, settings.CustomCategories)
	assert.Equal(t, state.Settings.SharedUsers, settings.SharedUsers)
	assert.Equal(t, now, doc.ExportDate)
	assert.Equal(t, FormatVersion, doc.Version)
}

func TestEncode_WritesBareNumbers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Export(sampleState(), time.Now())))

	out := buf.String()
	assert.Contains(t, out, `"value": 3000`)
	assert.Contains(t, out, `"monthlyGoal": 1500.5`)
	assert.Contains(t, out, `"Income": [`)
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":             `{`,
		"missing transactions": `{"currency":"EUR"}`,
		"null transactions":    `{"transactions":null}`,
		"object transactions":  `{"transactions":{"id":"x"}}`,
		"string transactions":  `{"transactions":"[]"}`,
		"bad type":             `{"transactions":[{"id":"a","type":"loan","value":1,"status":"pending"}]}`,
		"zero value":           `{"transactions":[{"id":"a","type":"debt","value":0,"status":"pending"}]}`,
		"bad status":           `{"transactions":[{"id":"a","type":"debt","value":1,"status":"late"}]}`,
		"missing id":           `{"transactions":[{"type":"debt","value":1,"status":"pending"},{"type":"debt","value":2,"status":"pending"}]}`,
		"blank id":             `{"transactions":[{"id":"  ","type":"debt","value":1,"status":"pending"}]}`,
		"duplicate id":         `{"transactions":[{"id":"a","type":"debt","value":1,"status":"pending"},{"id":"a","type":"debt","value":2,"status":"pending"}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(body))
			assert.ErrorIs(t, err, domain.ErrInvalidBackup)
		})
	}
}

func TestDecode_PartialDocument(t *testing.T) {
	body := `{"transactions":[{"id":"a","type":"income","value":"12.5","date":"bad","category":"Salary","description":"x","status":"paid"}],"currency":"USD"}`

	doc, err := Decode(strings.NewReader(body))
	require.NoError(t, err)

	require.Len(t, doc.Entries, 1)
	assert.True(t, doc.Entries[0].Value.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "bad", doc.Entries[0].Date, "malformed dates are carried over")
	assert.Equal(t, domain.StatusPaid, doc.Entries[0].Status)

	assert.True(t, doc.HasSettings())
	assert.Nil(t, doc.MonthlyGoal)
	assert.Nil(t, doc.CustomCategories)
	assert.Nil(t, doc.SharedUsers)

	current := domain.DefaultSettings()
	current.MonthlyGoal = decimal.NewFromInt(99)
	current.SharedUsers = []string{"keep@example.com"}

	next := doc.ApplySettings(current)
	assert.Equal(t, "USD", next.Currency)
	assert.True(t, next.MonthlyGoal.Equal(decimal.NewFromInt(99)), "absent goal keeps the current one")
	assert.Equal(t, []string{"keep@example.com"}, next.SharedUsers)
}

func TestDecode_EmptyLedger(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"transactions":[]}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Entries)
	assert.False(t, doc.HasSettings())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleState().Entries))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "header plus two visible rows")
	assert.Equal(t, "Type,Value,Date,Category,Description,Status", lines[0])
	assert.Equal(t, `income,3000,2025-05-05,Salary,"May salary",received`, lines[1])
	assert.Equal(t, `debt,33.34,2025-07-31,Leisure,"TV ""4K"" (3/3)",pending`, lines[2])
}
