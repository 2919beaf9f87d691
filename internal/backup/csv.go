package backup

import (
	"bufio"
	"io"
	"strings"

	"github.com/iho/pocketledger/internal/domain"
)

var csvHeader = []string{"Type", "Value", "Date", "Category", "Description", "Status"}

// WriteCSV renders one row per visible entry. The description column is always quoted;
// other columns are quoted only when they contain a separator, quote or line break.
func WriteCSV(w io.Writer, entries []domain.Entry) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(csvHeader, ",") + "\n"); err != nil {
		return err
	}

	for _, e := range domain.Visible(entries) {
		row := []string{
			csvField(string(e.Type), false),
			csvField(e.Value.String(), false),
			csvField(e.Date, false),
			csvField(e.Category, false),
			csvField(e.Description, true),
			csvField(string(e.Status), false),
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func csvField(s string, alwaysQuote bool) string {
	if !alwaysQuote && !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
