package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ports "wealth/internal/sheets"
)

var sentAtLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}

// parseRow converts one row of the values matrix back into an AlertRecord.
// USER_ENTERED values may come back formatted, so numbers accept a decimal
// comma, thousands separators and a trailing percent sign.
func parseRow(row []any) (ports.AlertRecord, error) {
	if len(row) < columnCount {
		return ports.AlertRecord{}, fmt.Errorf("want %d columns, got %d", columnCount, len(row))
	}
	cols := toStrings(row)

	sentAt, err := parseSentAt(cols[0])
	if err != nil {
		return ports.AlertRecord{}, err
	}
	budget, err := parseNumber(cols[6])
	if err != nil {
		return ports.AlertRecord{}, fmt.Errorf("budget: %w", err)
	}
	spent, err := parseNumber(cols[7])
	if err != nil {
		return ports.AlertRecord{}, fmt.Errorf("spent: %w", err)
	}
	pct, err := parseNumber(cols[8])
	if err != nil {
		return ports.AlertRecord{}, fmt.Errorf("percentage: %w", err)
	}

	return ports.AlertRecord{
		SentAt:         sentAt,
		Month:          cols[1],
		UserID:         cols[2],
		UserEmail:      cols[3],
		BudgetID:       cols[4],
		AccountName:    cols[5],
		BudgetAmount:   budget,
		Spent:          spent,
		PercentageUsed: pct,
	}, nil
}

func parseSentAt(s string) (time.Time, error) {
	for _, layout := range sentAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return decimal.NewFromString(s)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
