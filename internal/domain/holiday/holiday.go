package holiday

import (
	"context"
	"time"
)

// Holiday is a single public holiday as reported by the data provider.
type Holiday struct {
	Date time.Time
	Name string
}

// Country pairs a human-readable label with the provider's country code.
type Country struct {
	Label string
	Code  string
}

// Source supplies public holidays for a country and year. Implementations
// must degrade to an empty list on any failure instead of returning an error,
// so callers can always render a report.
type Source interface {
	Holidays(ctx context.Context, countryCode string, year int) []Holiday
}
