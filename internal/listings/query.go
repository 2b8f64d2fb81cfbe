// Package listings adapts marketplace listing sources to the valuation
// engine's comp and for-sale interfaces.
package listings

import (
	"strconv"
	"strings"

	"github.com/sells-group/card-cli/internal/model"
)

// QueryText renders a listing query as marketplace search text, e.g.
// "2025 Topps Chrome #251 Refractor PSA 10 Cooper Flagg".
func QueryText(q model.ListingQuery) string {
	var parts []string
	if q.Year > 0 {
		parts = append(parts, strconv.Itoa(q.Year))
	}
	if q.Set != "" {
		parts = append(parts, q.Set)
	}
	if q.CardNumber != "" {
		parts = append(parts, "#"+strings.TrimPrefix(q.CardNumber, "#"))
	}
	if q.ParallelType != "" {
		parts = append(parts, q.ParallelType)
	}
	if q.Grade != "" {
		parts = append(parts, q.Grade)
	}
	parts = append(parts, q.Player)
	parts = append(parts, q.Keywords...)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
