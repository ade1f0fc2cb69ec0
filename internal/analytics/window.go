package analytics

import (
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/model"
)

// DefaultTimeRange applies when no range or an unknown one is requested.
const DefaultTimeRange = "30d"

var timeRanges = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// Query selects the records a report covers. StartDate and EndDate take
// precedence over TimeRange when both are set.
type Query struct {
	ProductID string
	TimeRange string
	StartDate string
	EndDate   string
	Limit     int
}

// window resolves q against now. The returned label is the effective
// time range.
func (q Query) window(now time.Time) (model.AnalyticsWindow, string, error) {
	w := model.AnalyticsWindow{ProductID: q.ProductID}
	if q.StartDate != "" && q.EndDate != "" {
		from, _, err := parseDate(q.StartDate)
		if err != nil {
			return w, "", apperror.Validation("startDate", "startDate must be a date (YYYY-MM-DD or RFC 3339)")
		}
		to, wholeDay, err := parseDate(q.EndDate)
		if err != nil {
			return w, "", apperror.Validation("endDate", "endDate must be a date (YYYY-MM-DD or RFC 3339)")
		}
		if wholeDay {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		if to.Before(from) {
			return w, "", apperror.Validation("endDate", "endDate must not be before startDate")
		}
		w.From, w.To = from, to
		return w, "custom", nil
	}

	label := q.TimeRange
	span, ok := timeRanges[label]
	if !ok {
		label = DefaultTimeRange
		span = timeRanges[label]
	}
	w.From = now.Add(-span)
	return w, label, nil
}

// parseDate accepts RFC 3339 or a bare date. A bare date is reported so
// an end bound can cover the whole day.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	return t, true, err
}
