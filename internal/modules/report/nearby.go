// README: Radius search over recent reports.
package report

import (
	"context"
	"math"
	"time"

	"kavach/internal/metrics"
	"kavach/internal/modules/location"
	"kavach/internal/types"
)

// FetchCeiling caps the recency-ordered fetch before distance filtering.
// In-radius reports older than the newest FetchCeiling matches are not seen.
const FetchCeiling = 100

const DefaultNearbyLimit = 10

type Timeframe string

const (
	TimeframeAll   Timeframe = "all"
	TimeframeToday Timeframe = "today"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

type NearbyQuery struct {
	Center    types.Point
	RadiusKm  float64
	Timeframe Timeframe
	CrimeType string
	Limit     int
}

// NearbyReport carries the unrounded distance from the query center.
type NearbyReport struct {
	Report     Report
	DistanceKm float64
}

// cutoffFor returns the earliest creation time admitted by tf; zero means no bound.
func cutoffFor(tf Timeframe, now time.Time) (time.Time, error) {
	switch tf {
	case "", TimeframeAll:
		return time.Time{}, nil
	case TimeframeToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case TimeframeWeek:
		return now.AddDate(0, 0, -7), nil
	case TimeframeMonth:
		return now.AddDate(0, -1, 0), nil
	case TimeframeYear:
		return now.AddDate(-1, 0, 0), nil
	}
	return time.Time{}, ErrBadRequest
}

// FindNearby returns reports within RadiusKm of Center, closest first.
func (s *Service) FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyReport, error) {
	if err := location.Validate(q.Center); err != nil {
		return nil, err
	}
	if math.IsNaN(q.RadiusKm) || q.RadiusKm < 0 {
		return nil, ErrBadRequest
	}
	since, err := cutoffFor(q.Timeframe, s.now().In(s.tz))
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	metrics.NearbyQueriesTotal.Inc()

	rctx, cancel := s.repoCtx(ctx)
	defer cancel()
	recent, err := s.repo.ListRecent(rctx, RecentFilter{Since: since, CrimeType: q.CrimeType, Limit: FetchCeiling})
	if err != nil {
		return nil, err
	}
	if len(recent) >= FetchCeiling {
		metrics.NearbyFetchCeilingHitsTotal.Inc()
	}

	out := make([]NearbyReport, 0, limit)
	for _, r := range recent {
		d := location.DistanceKm(q.Center, r.Location)
		if d <= q.RadiusKm {
			out = append(out, NearbyReport{Report: r, DistanceKm: d})
		}
	}
	location.SortByDistance(out, func(n NearbyReport) float64 { return n.DistanceKm })
	if len(out) > limit {
		out = out[:limit]
	}
	metrics.NearbyResults.Observe(float64(len(out)))
	return out, nil
}
