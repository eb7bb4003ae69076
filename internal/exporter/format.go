package exporter

import (
	"strconv"
	"time"

	"oddscli/pkg/contracts/domain"
)

// formatFloat writes the shortest text that reads back as the same float64
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDate formats a snapshot date as YYYY-MM-DD
func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
