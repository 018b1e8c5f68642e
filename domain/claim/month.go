package claim

import (
	"claimflow/bizerror"
	"time"

	"github.com/fundwit/go-commons/types"
)

const claimMonthLayout = "2006-01"

// ParseClaimMonth normalizes a year-month text ("2024-01") into its canonical form.
func ParseClaimMonth(text string) (string, error) {
	t, err := time.Parse(claimMonthLayout, text)
	if err != nil {
		return "", &bizerror.ValidationError{Field: "claimMonth", Reason: "must be formatted as YYYY-MM"}
	}
	return t.Format(claimMonthLayout), nil
}

// MonthOf returns the claim month containing the timestamp, read in UTC as the database stores it.
func MonthOf(ts types.Timestamp) string {
	return ts.Time().UTC().Format(claimMonthLayout)
}

// DisplayMonth renders a claim month as "January 2024".
func DisplayMonth(claimMonth string) string {
	t, err := time.Parse(claimMonthLayout, claimMonth)
	if err != nil {
		return claimMonth
	}
	return t.Format("January 2006")
}
