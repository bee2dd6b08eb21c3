package httpx

import (
	"net/http"
	"time"

	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// QueryDate reads a YYYY-MM-DD query parameter. An absent parameter yields
// the zero time.
func QueryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := dateutil.ParseDate(raw, time.Local)
	if err != nil {
		return time.Time{}, apperror.Validation("%s must be a date in YYYY-MM-DD format", name)
	}
	return t, nil
}

// QueryRange reads the start and end query parameters
func QueryRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := QueryDate(r, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := QueryDate(r, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, apperror.Validation("end date is before start date")
	}
	return start, end, nil
}
